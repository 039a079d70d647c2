package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driving"
	"github.com/voiceforge-labs/voiceforge-cli/internal/logger"
	"github.com/voiceforge-labs/voiceforge-cli/internal/splitter"
	"github.com/voiceforge-labs/voiceforge-cli/internal/vectorindex"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService turns new knowledge documents into embedded, searchable
// fragments. It is the single writer over the vector index and fragment
// store pair.
type IngestService struct {
	connector   driven.Connector
	normalisers map[string]driven.Normaliser
	embedder    driven.EmbeddingService
	fragments   driven.FragmentStore
	ledger      driven.ProcessedLedger
	kv          driven.KVStore
	indexPath   string

	mu     sync.Mutex
	status driving.IngestStatus
}

// NewIngestService creates an ingest service. The normalisers are indexed
// by the MIME types they support; later entries win on overlap.
func NewIngestService(
	connector driven.Connector,
	normalisers []driven.Normaliser,
	embedder driven.EmbeddingService,
	fragments driven.FragmentStore,
	ledger driven.ProcessedLedger,
	kv driven.KVStore,
	indexPath string,
) *IngestService {
	byMIME := make(map[string]driven.Normaliser)
	for _, n := range normalisers {
		for _, mime := range n.SupportedMIMETypes() {
			byMIME[mime] = n
		}
	}
	return &IngestService{
		connector:   connector,
		normalisers: byMIME,
		embedder:    embedder,
		fragments:   fragments,
		ledger:      ledger,
		kv:          kv,
		indexPath:   indexPath,
	}
}

// RunIngestion processes any source documents not yet in the ledger.
// Returns true when at least one fragment was added. Per-document failures
// are logged and leave the document un-ledgered so the next run retries it;
// run-level failures (index unreadable, store writes failing) propagate.
func (s *IngestService) RunIngestion(ctx context.Context) (bool, error) {
	if !s.beginRun() {
		return false, domain.ErrIngestInProgress
	}
	defer s.endRun()

	docs, err := s.connector.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list documents: %w", err)
	}

	pending, err := s.filterProcessed(ctx, docs)
	if err != nil {
		return false, err
	}
	if len(pending) == 0 {
		logger.Info("no new knowledge files to process")
		return false, nil
	}

	logger.Info("found %d new knowledge file(s)", len(pending))

	index, err := s.loadOrCreateIndex()
	if err != nil {
		return false, err
	}

	var staged []stagedDocument
	for _, doc := range pending {
		prepared, err := s.prepareDocument(ctx, doc.URI)
		if err != nil {
			s.noteDocument(0, err)
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			logger.Error("ingesting %s: %v", doc.URI, err)
			continue
		}
		s.noteDocument(len(prepared.fragments), nil)
		staged = append(staged, *prepared)
	}
	if len(staged) == 0 {
		return false, nil
	}

	return s.persistRun(ctx, index, staged)
}

// Status returns the state of the current or most recent run.
func (s *IngestService) Status(ctx context.Context) (*driving.IngestStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	return &status, nil
}

func (s *IngestService) beginRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Running {
		return false
	}
	s.status = driving.IngestStatus{Running: true}
	return true
}

func (s *IngestService) endRun() {
	s.mu.Lock()
	s.status.Running = false
	s.mu.Unlock()
}

func (s *IngestService) noteDocument(fragmentCount int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.DocumentsProcessed++
	s.status.FragmentsAdded += fragmentCount
	if err != nil {
		s.status.ErrorCount++
	}
}

// filterProcessed drops documents whose path identity is already ledgered.
// Identity is the path alone: content edits to a processed file are not
// detected and do not trigger re-embedding.
func (s *IngestService) filterProcessed(ctx context.Context, docs []domain.RawDocument) ([]domain.RawDocument, error) {
	var pending []domain.RawDocument
	for _, doc := range docs {
		processed, err := s.ledger.Contains(ctx, doc.URI)
		if err != nil {
			return nil, fmt.Errorf("checking ledger for %s: %w", doc.URI, err)
		}
		if !processed {
			pending = append(pending, doc)
		}
	}
	return pending, nil
}

// loadOrCreateIndex loads the persisted index, or starts a fresh one at the
// embedder's dimension when none has been saved yet. A corrupt blob is a
// run-level failure, never silently replaced.
func (s *IngestService) loadOrCreateIndex() (*vectorindex.Index, error) {
	index, err := vectorindex.Load(s.indexPath)
	if errors.Is(err, domain.ErrStoreNotFound) {
		return vectorindex.New(s.embedder.Dimensions()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading vector index: %w", err)
	}
	if index.Dimensions() != s.embedder.Dimensions() {
		return nil, fmt.Errorf("%w: index built at %d dimensions, embedder produces %d",
			domain.ErrDimensionMismatch, index.Dimensions(), s.embedder.Dimensions())
	}
	return index, nil
}

// stagedDocument is one document's prepared output, held in memory until the
// end-of-run persistence pass. A document with no usable paragraphs stages
// with no fragments; it is still ledgered so the poller stops revisiting it.
type stagedDocument struct {
	uri       string
	fragments []domain.Fragment
	vectors   [][]float32
}

// prepareDocument reads, normalises, splits and embeds one document without
// touching any store. Failures leave the document un-ledgered and retried on
// the next run.
func (s *IngestService) prepareDocument(ctx context.Context, uri string) (*stagedDocument, error) {
	doc, err := s.connector.Read(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	normaliser, ok := s.normalisers[doc.MIMEType]
	if !ok {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrUnsupportedType, doc.MIMEType)
	}

	text, err := normaliser.Normalise(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}

	paragraphs := splitter.Split(text)
	if len(paragraphs) == 0 {
		logger.Warn("no usable paragraphs in %s", uri)
		return &stagedDocument{uri: uri}, nil
	}

	now := time.Now().UTC()
	prepared := &stagedDocument{uri: uri}
	for _, paragraph := range paragraphs {
		vector, err := s.embedder.Embed(ctx, paragraph)
		if err != nil {
			return nil, fmt.Errorf("embedding paragraph: %w", err)
		}
		prepared.fragments = append(prepared.fragments, domain.Fragment{
			ID:        uuid.NewString(),
			Content:   paragraph,
			SourceURI: uri,
			CreatedAt: now,
		})
		prepared.vectors = append(prepared.vectors, vector)
	}

	logger.Debug("prepared %s: %d fragment(s)", uri, len(prepared.fragments))
	return prepared, nil
}

// persistRun writes one run's staged output wholesale. The write order is
// fixed: index blob first, then fragments, then the ledger rows. The ledger
// comes last so a crash mid-run leaves every staged document un-ledgered and
// retried; the orphan vectors that can leave behind are tolerated because
// retrieval skips unknown ids.
func (s *IngestService) persistRun(ctx context.Context, index *vectorindex.Index, staged []stagedDocument) (bool, error) {
	var fragments []domain.Fragment
	uris := make([]string, 0, len(staged))
	for _, doc := range staged {
		for i := range doc.fragments {
			if err := index.Insert(doc.vectors[i], doc.fragments[i].ID); err != nil {
				return false, fmt.Errorf("inserting vector: %w", err)
			}
		}
		fragments = append(fragments, doc.fragments...)
		uris = append(uris, doc.uri)
	}

	if len(fragments) > 0 {
		if err := index.Save(s.indexPath); err != nil {
			return false, fmt.Errorf("persisting vector index: %w", err)
		}
		if err := s.fragments.SaveFragments(ctx, fragments); err != nil {
			return false, fmt.Errorf("persisting fragments: %w", err)
		}
	}
	if err := s.ledger.Add(ctx, uris...); err != nil {
		return false, fmt.Errorf("updating ledger: %w", err)
	}

	if len(fragments) == 0 {
		return false, nil
	}
	if err := s.kv.Set(ctx, driven.KeyLastUpdated, time.Now().UTC().Format(time.RFC3339)); err != nil {
		logger.Warn("recording last-updated marker: %v", err)
	}
	logger.Info("knowledge base updated: %d fragment(s) from %d file(s)", len(fragments), len(uris))
	return true, nil
}
