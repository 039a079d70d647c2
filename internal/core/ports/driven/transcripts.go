package driven

import (
	"context"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

// TranscriptSource enumerates conversation transcripts from the category
// directories. Like document connectors, transcript sources are polled on a
// fixed interval and diffed against a ledger.
type TranscriptSource interface {
	// List returns the transcripts of one category, sorted by URI.
	// Content is not loaded; use Read for that.
	List(ctx context.Context, category domain.TranscriptCategory) ([]domain.Transcript, error)

	// Read loads a transcript's content.
	Read(ctx context.Context, uri string) (*domain.Transcript, error)
}
