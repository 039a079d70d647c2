package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driving"
	"github.com/voiceforge-labs/voiceforge-cli/internal/logger"
	"github.com/voiceforge-labs/voiceforge-cli/internal/vectorindex"
)

// DefaultMaxResults is how many fragments a retrieval returns when the
// caller does not say otherwise.
const DefaultMaxResults = 3

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

// RetrievalService serves knowledge context to the conversation runtime.
// It holds a read-only snapshot of the vector index; Reload swaps in the
// freshly persisted state after an ingestion run.
type RetrievalService struct {
	embedder  driven.EmbeddingService
	fragments driven.FragmentStore
	prompts   driven.PromptStore
	indexPath string

	mu        sync.RWMutex
	index     *vectorindex.Index
	attempted bool
}

// NewRetrievalService creates a retrieval service. The index is not loaded
// until Load is called or the first retrieval triggers a lazy load.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	fragments driven.FragmentStore,
	prompts driven.PromptStore,
	indexPath string,
) *RetrievalService {
	return &RetrievalService{
		embedder:  embedder,
		fragments: fragments,
		prompts:   prompts,
		indexPath: indexPath,
	}
}

// Load loads the persisted vector index and reports whether it succeeded.
// An absent index is a normal cold start and returns false without logging
// an error; a corrupt one is logged.
func (s *RetrievalService) Load(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Reload discards the in-memory index and loads the persisted state again.
func (s *RetrievalService) Reload(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
	s.attempted = false
	return s.loadLocked()
}

func (s *RetrievalService) loadLocked() bool {
	s.attempted = true
	index, err := vectorindex.Load(s.indexPath)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			logger.Debug("no vector index at %s yet", s.indexPath)
		} else {
			logger.Error("loading vector index: %v", err)
		}
		s.index = nil
		return false
	}
	s.index = index
	logger.Info("loaded vector index: %d fragment(s), %d dimensions", index.Len(), index.Dimensions())
	return true
}

// snapshot returns the current index, attempting one lazy load if none has
// been tried yet.
func (s *RetrievalService) snapshot() *vectorindex.Index {
	s.mu.RLock()
	if s.attempted {
		index := s.index
		s.mu.RUnlock()
		return index
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attempted {
		s.loadLocked()
	}
	return s.index
}

// RetrieveContext returns up to maxResults knowledge fragments relevant to
// the query, formatted as numbered context blocks. Every failure mode
// yields an empty string: missing context degrades a conversation, it must
// not break one.
func (s *RetrievalService) RetrieveContext(ctx context.Context, query string, maxResults int) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	index := s.snapshot()
	if index == nil || index.Len() == 0 {
		return ""
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("embedding query: %v", err)
		return ""
	}

	hits, err := index.Search(vector, maxResults)
	if err != nil {
		logger.Warn("searching vector index: %v", err)
		return ""
	}

	var blocks []string
	for _, hit := range hits {
		fragment, err := s.fragments.GetFragment(ctx, hit.FragmentID)
		if err != nil {
			// An id in the index but not the store means a partially
			// persisted ingest run; skip rather than fail the call.
			logger.Warn("fragment %s missing from store", hit.FragmentID)
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Context %d:\n%s\n", len(blocks)+1, fragment.Content))
	}
	return strings.Join(blocks, "\n")
}

// EnrichChatContext injects retrieved context into a conversation history
// ahead of the latest user message. The history is mutated in place: the
// last user message is replaced by a synthetic assistant message carrying
// the context, then re-appended, so the user's message stays most recent.
// Returns whether a mutation occurred.
func (s *RetrievalService) EnrichChatContext(ctx context.Context, history *domain.ChatHistory) bool {
	if history == nil {
		return false
	}
	last := history.Last()
	if last == nil || last.Role != domain.RoleUser {
		return false
	}

	retrieved := s.RetrieveContext(ctx, last.Content, DefaultMaxResults)
	if retrieved == "" {
		return false
	}

	preamble, err := s.prompts.Load(driven.PromptContextPreamble)
	if err != nil {
		logger.Warn("loading context preamble: %v", err)
		return false
	}

	userMsg := *last
	history.Messages[len(history.Messages)-1] = domain.ChatMessage{
		Role:    domain.RoleAssistant,
		Content: fmt.Sprintf(preamble, retrieved),
	}
	history.Append(userMsg)
	return true
}
