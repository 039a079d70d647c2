package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
	"github.com/voiceforge-labs/voiceforge-cli/internal/vectorindex"
)

const (
	paragraphOne = "The first paragraph carries enough text to survive the length filter."
	paragraphTwo = "The second paragraph also carries enough text to survive the filter."
)

type ingestFixture struct {
	connector *mockConnector
	embedder  *mockEmbedder
	fragments *mockFragmentStore
	ledger    *mockLedger
	kv        *mockKV
	indexPath string
	service   *IngestService
}

func newIngestFixture(t *testing.T, docs ...domain.RawDocument) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		connector: &mockConnector{docs: docs},
		embedder:  &mockEmbedder{dims: 3},
		fragments: newMockFragmentStore(),
		ledger:    newMockLedger(),
		kv:        newMockKV(),
		indexPath: filepath.Join(t.TempDir(), "vectors.idx"),
	}
	f.service = NewIngestService(
		f.connector,
		[]driven.Normaliser{&mockNormaliser{mimes: []string{"text/plain"}}},
		f.embedder,
		f.fragments,
		f.ledger,
		f.kv,
		f.indexPath,
	)
	return f
}

func textDoc(uri, content string) domain.RawDocument {
	return domain.RawDocument{URI: uri, MIMEType: "text/plain", Content: []byte(content)}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestIngestService_RunIngestion(t *testing.T) {
	ctx := context.Background()

	t.Run("splits a document into fragments and persists everything", func(t *testing.T) {
		f := newIngestFixture(t, textDoc("/kb/doc.txt", paragraphOne+"\n\n"+paragraphTwo))

		added, err := f.service.RunIngestion(ctx)

		require.NoError(t, err)
		assert.True(t, added)

		count, err := f.fragments.CountFragments(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		index, err := vectorindex.Load(f.indexPath)
		require.NoError(t, err)
		assert.Equal(t, 2, index.Len())

		ledgered, err := f.ledger.Contains(ctx, "/kb/doc.txt")
		require.NoError(t, err)
		assert.True(t, ledgered)

		_, err = f.kv.Get(ctx, driven.KeyLastUpdated)
		assert.NoError(t, err)
	})

	t.Run("second run with nothing new reports no update", func(t *testing.T) {
		f := newIngestFixture(t, textDoc("/kb/doc.txt", paragraphOne))

		added, err := f.service.RunIngestion(ctx)
		require.NoError(t, err)
		require.True(t, added)
		embedCalls := len(f.embedder.calls)

		added, err = f.service.RunIngestion(ctx)
		require.NoError(t, err)
		assert.False(t, added)
		assert.Len(t, f.embedder.calls, embedCalls, "no re-embedding on an idle run")
	})

	t.Run("ledgered documents are never re-embedded even when content changes", func(t *testing.T) {
		f := newIngestFixture(t, textDoc("/kb/doc.txt", paragraphOne))

		_, err := f.service.RunIngestion(ctx)
		require.NoError(t, err)
		embedCalls := len(f.embedder.calls)

		// Edit the file in place. Identity is the path, so the edit is
		// invisible to the pipeline.
		f.connector.docs[0].Content = []byte(paragraphTwo)

		added, err := f.service.RunIngestion(ctx)
		require.NoError(t, err)
		assert.False(t, added)
		assert.Len(t, f.embedder.calls, embedCalls)
	})

	t.Run("document with no usable paragraphs is ledgered without fragments", func(t *testing.T) {
		f := newIngestFixture(t, textDoc("/kb/short.txt", "tiny"))

		added, err := f.service.RunIngestion(ctx)

		require.NoError(t, err)
		assert.False(t, added)

		ledgered, err := f.ledger.Contains(ctx, "/kb/short.txt")
		require.NoError(t, err)
		assert.True(t, ledgered, "ledgered so the poller stops revisiting it")

		count, err := f.fragments.CountFragments(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("embedding failure leaves the document un-ledgered for retry", func(t *testing.T) {
		f := newIngestFixture(t, textDoc("/kb/doc.txt", paragraphOne))
		f.embedder.err = errors.New("service down")

		added, err := f.service.RunIngestion(ctx)

		require.NoError(t, err, "per-document failures do not abort the run")
		assert.False(t, added)

		ledgered, err := f.ledger.Contains(ctx, "/kb/doc.txt")
		require.NoError(t, err)
		assert.False(t, ledgered)

		status, err := f.service.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, status.ErrorCount)
	})

	t.Run("one failing document does not block the others", func(t *testing.T) {
		f := newIngestFixture(t,
			textDoc("/kb/good.txt", paragraphOne),
			domain.RawDocument{URI: "/kb/odd.bin", MIMEType: "application/octet-stream"},
		)

		added, err := f.service.RunIngestion(ctx)

		require.NoError(t, err)
		assert.True(t, added)

		status, err := f.service.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, status.DocumentsProcessed)
		assert.Equal(t, 1, status.ErrorCount)
		assert.Equal(t, 1, status.FragmentsAdded)
	})

	t.Run("a run persists wholesale, not per document", func(t *testing.T) {
		f := newIngestFixture(t,
			textDoc("/kb/one.txt", paragraphOne),
			textDoc("/kb/two.txt", paragraphTwo),
		)

		added, err := f.service.RunIngestion(ctx)

		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, 1, f.fragments.saveCalls, "all fragments land in one write")

		index, err := vectorindex.Load(f.indexPath)
		require.NoError(t, err)
		assert.Equal(t, 2, index.Len())
	})

	t.Run("fragment persistence failure leaves every document un-ledgered", func(t *testing.T) {
		f := newIngestFixture(t,
			textDoc("/kb/one.txt", paragraphOne),
			textDoc("/kb/two.txt", paragraphTwo),
		)
		f.fragments.saveErr = errors.New("disk full")

		_, err := f.service.RunIngestion(ctx)

		require.ErrorContains(t, err, "persisting fragments")
		for _, uri := range []string{"/kb/one.txt", "/kb/two.txt"} {
			ledgered, err := f.ledger.Contains(ctx, uri)
			require.NoError(t, err)
			assert.False(t, ledgered, "retried on the next run")
		}
		_, err = f.kv.Get(ctx, driven.KeyLastUpdated)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list failure is a run-level error", func(t *testing.T) {
		f := newIngestFixture(t)
		f.connector.listErr = errors.New("disk gone")

		_, err := f.service.RunIngestion(ctx)

		assert.ErrorContains(t, err, "list documents")
	})

	t.Run("corrupt index blob fails the run rather than being replaced", func(t *testing.T) {
		f := newIngestFixture(t, textDoc("/kb/doc.txt", paragraphOne))
		writeFile(t, f.indexPath, "not a gob blob")

		_, err := f.service.RunIngestion(ctx)

		assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
	})

	t.Run("index dimension must match the embedder", func(t *testing.T) {
		f := newIngestFixture(t, textDoc("/kb/doc.txt", paragraphOne))
		stale := vectorindex.New(8)
		require.NoError(t, stale.Save(f.indexPath))

		_, err := f.service.RunIngestion(ctx)

		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("appends to an existing index across runs", func(t *testing.T) {
		f := newIngestFixture(t, textDoc("/kb/one.txt", paragraphOne))

		_, err := f.service.RunIngestion(ctx)
		require.NoError(t, err)

		f.connector.docs = append(f.connector.docs, textDoc("/kb/two.txt", paragraphTwo))
		added, err := f.service.RunIngestion(ctx)
		require.NoError(t, err)
		assert.True(t, added)

		index, err := vectorindex.Load(f.indexPath)
		require.NoError(t, err)
		assert.Equal(t, 2, index.Len())
	})
}

// blockingEmbedder parks every Embed call until released, so a test can
// hold an ingestion run open.
type blockingEmbedder struct {
	started  chan struct{}
	release  chan struct{}
	blockOne bool
}

func (b *blockingEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	if b.blockOne {
		b.blockOne = false
		close(b.started)
		select {
		case <-b.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []float32{1, 0, 0}, nil
}

func (b *blockingEmbedder) Dimensions() int   { return 3 }
func (b *blockingEmbedder) ModelName() string { return "blocking" }
func (b *blockingEmbedder) Close() error      { return nil }

func TestIngestService_RunIngestion_SingleWriter(t *testing.T) {
	ctx := context.Background()
	embedder := &blockingEmbedder{
		started:  make(chan struct{}),
		release:  make(chan struct{}),
		blockOne: true,
	}

	service := NewIngestService(
		&mockConnector{docs: []domain.RawDocument{textDoc("/kb/doc.txt", paragraphOne)}},
		[]driven.Normaliser{&mockNormaliser{mimes: []string{"text/plain"}}},
		embedder,
		newMockFragmentStore(),
		newMockLedger(),
		newMockKV(),
		filepath.Join(t.TempDir(), "vectors.idx"),
	)

	done := make(chan error, 1)
	go func() {
		_, err := service.RunIngestion(ctx)
		done <- err
	}()

	<-embedder.started
	_, err := service.RunIngestion(ctx)
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)

	close(embedder.release)
	require.NoError(t, <-done)
}
