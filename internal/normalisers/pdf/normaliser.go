// Package pdf normalises PDF documents by shelling out to pdftotext from
// the poppler-utils suite. Go PDF libraries handle text extraction poorly
// for real-world documents, so the external tool stays.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found")

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents via pdftotext.
type Normaliser struct {
	runner driven.CommandRunner
}

// execRunner runs commands on the host.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// New creates a PDF normaliser using the system pdftotext binary.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}}
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
// Used in tests to avoid requiring pdftotext on the host.
func NewWithRunner(runner driven.CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return fmt.Errorf("%w: %v", ErrPDFToolNotFound, err)
	}
	return nil
}

// InstallInstructions returns platform installation hints for pdftotext.
func InstallInstructions() string {
	return strings.Join([]string{
		"pdftotext is required for PDF ingestion (part of poppler-utils):",
		"  macOS:         brew install poppler",
		"  Debian/Ubuntu: sudo apt install poppler-utils",
		"  Fedora:        sudo dnf install poppler-utils",
	}, "\n")
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Normalise extracts text from a PDF document.
// The raw bytes go to a temporary file because pdftotext reads from disk.
// Pages arrive separated by form feeds; they are rejoined with blank lines
// so that page boundaries become paragraph boundaries downstream. A PDF
// with no extractable text (scanned images, for instance) yields an empty
// string, which the caller treats as nothing to ingest.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	tmp, err := os.CreateTemp("", "voiceforge-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	// -layout preserves column structure, "-" writes to stdout.
	output, err := n.runner.Run(ctx, "pdftotext", "-layout", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", filepath.Base(raw.URI), err)
	}

	return joinPages(string(output)), nil
}

// joinPages rewrites pdftotext's form-feed page separators as blank lines.
func joinPages(text string) string {
	pages := strings.Split(text, "\f")
	kept := pages[:0]
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page != "" {
			kept = append(kept, page)
		}
	}
	return strings.Join(kept, "\n\n")
}
