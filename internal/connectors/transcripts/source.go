// Package transcripts provides a filesystem-backed transcript source.
// Transcripts are Markdown files grouped into one subdirectory per
// category under a single root:
//
//	<root>/onboarding/*.md
//	<root>/improvement/*.md
//	<root>/generated/*.md
//
// The directory a file lives in determines its category and therefore
// which derivation applies to it.
package transcripts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
)

const transcriptExtension = ".md"

// Ensure Source implements the interface.
var _ driven.TranscriptSource = (*Source)(nil)

// Source reads transcripts from the category subdirectories of a root path.
type Source struct {
	rootPath string
}

// New creates a transcript source rooted at rootPath.
func New(rootPath string) *Source {
	return &Source{rootPath: rootPath}
}

// RootPath returns the configured root directory.
func (s *Source) RootPath() string {
	return s.rootPath
}

// CategoryDir returns the directory holding a category's transcripts.
func (s *Source) CategoryDir(category domain.TranscriptCategory) string {
	return filepath.Join(s.rootPath, category.String())
}

// EnsureDirs creates the category subdirectories if they are absent, so a
// fresh installation has somewhere to drop transcripts.
func (s *Source) EnsureDirs() error {
	for _, category := range domain.CategoryProcessingOrder {
		if err := os.MkdirAll(s.CategoryDir(category), 0700); err != nil {
			return fmt.Errorf("creating %s directory: %w", category, err)
		}
	}
	return nil
}

// List returns the transcripts of one category, sorted by URI. Content is
// not loaded. A missing category directory means nothing to process yet.
func (s *Source) List(ctx context.Context, category domain.TranscriptCategory) ([]domain.Transcript, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: category %q", domain.ErrInvalidInput, category)
	}

	dir := s.CategoryDir(category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var found []domain.Transcript
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), transcriptExtension) {
			continue
		}

		found = append(found, domain.Transcript{
			URI:      filepath.Join(dir, entry.Name()),
			Category: category,
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].URI < found[j].URI })
	return found, nil
}

// Read loads a transcript's content. The category is derived from the
// parent directory name.
func (s *Source) Read(ctx context.Context, uri string) (*domain.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	category := domain.TranscriptCategory(filepath.Base(filepath.Dir(uri)))
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %s is not in a category directory", domain.ErrInvalidInput, uri)
	}

	content, err := os.ReadFile(uri)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, uri)
		}
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}

	return &domain.Transcript{
		URI:      uri,
		Category: category,
		Content:  string(content),
	}, nil
}
