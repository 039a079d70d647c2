package driven

import (
	"context"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

// Connector enumerates source documents from a location. The pipeline polls
// connectors on a fixed interval and diffs the results against a processed
// ledger; connectors do not watch for filesystem events, which keeps the
// crash-safety story entirely in the ledger.
type Connector interface {
	// Type returns the connector type identifier (e.g. "filesystem").
	Type() string

	// List enumerates documents currently present at the source.
	// Content is not loaded; use Read for that.
	List(ctx context.Context) ([]domain.RawDocument, error)

	// Read loads the raw content for the document at uri.
	Read(ctx context.Context, uri string) (*domain.RawDocument, error)
}
