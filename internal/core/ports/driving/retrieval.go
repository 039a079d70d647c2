package driving

import (
	"context"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

// Retriever serves knowledge context to the conversation runtime.
type Retriever interface {
	// Load loads the persisted vector index and reports whether the load
	// succeeded. Callers may skip this: retrieval operations attempt a
	// single lazy load on first use.
	Load(ctx context.Context) bool

	// Reload discards the in-memory index and loads the persisted state
	// again. Used after an ingestion run adds fragments.
	Reload(ctx context.Context) bool

	// RetrieveContext returns up to maxResults knowledge fragments relevant
	// to the query, formatted as numbered context blocks. Failures yield an
	// empty string, never an error: missing context degrades the
	// conversation, it must not break it.
	RetrieveContext(ctx context.Context, query string, maxResults int) string

	// EnrichChatContext injects retrieved context into a conversation
	// history ahead of the latest user message. It mutates history in place
	// and returns whether a mutation occurred.
	EnrichChatContext(ctx context.Context, history *domain.ChatHistory) bool
}
