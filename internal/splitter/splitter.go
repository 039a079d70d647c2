// Package splitter breaks normalised document text into ingestible
// fragments. Documents split on blank lines, one fragment per paragraph,
// which keeps each embedded unit semantically self-contained.
package splitter

import (
	"strings"
	"unicode"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

// Split divides text into paragraph fragments.
// Paragraphs are separated by one or more blank lines (lines containing only
// whitespace count as blank). Each paragraph is trimmed; paragraphs with
// fewer than domain.MinFragmentLength non-whitespace characters are dropped,
// which filters out page numbers, stray headings and other noise that would
// pollute retrieval. Returns nil when nothing survives.
func Split(text string) []string {
	var fragments []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		paragraph := strings.TrimSpace(strings.Join(current, "\n"))
		current = current[:0]
		if contentLength(paragraph) >= domain.MinFragmentLength {
			fragments = append(fragments, paragraph)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return fragments
}

// contentLength counts non-whitespace runes.
func contentLength(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
