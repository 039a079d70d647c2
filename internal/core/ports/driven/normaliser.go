package driven

import (
	"context"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

// Normaliser extracts plain text from a raw document.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise converts a raw document to extracted text. A document that
	// yields no text returns an empty string and no error; the caller logs
	// and skips it.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)
}

// CommandRunner executes an external command and returns its combined output.
// It exists so normalisers that shell out (pdftotext) can be tested with a
// mock runner.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
