package driving

import "context"

// Ingestor turns new knowledge documents into searchable fragments.
type Ingestor interface {
	// RunIngestion processes any new source documents. It returns true when
	// at least one fragment was added, so the caller can decide whether to
	// hot-reload the retrieval side.
	RunIngestion(ctx context.Context) (bool, error)

	// Status returns the state of the current or most recent run.
	Status(ctx context.Context) (*IngestStatus, error)
}

// IngestStatus represents the current state of an ingestion run.
type IngestStatus struct {
	// Running indicates if ingestion is currently in progress.
	Running bool

	// DocumentsProcessed is the count of documents handled this run.
	DocumentsProcessed int

	// FragmentsAdded is the count of fragments embedded this run.
	FragmentsAdded int

	// ErrorCount is the number of per-document errors encountered.
	ErrorCount int
}
