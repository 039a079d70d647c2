package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document or transcript type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestInProgress indicates an ingestion run is already active.
	// Ingestion is a single-writer operation over the vector index and
	// fragment repository pair.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// Vector index errors.

	// ErrStoreNotFound indicates the persisted vector index blob is absent.
	// Recoverable: a fresh index is built on the next ingestion run.
	ErrStoreNotFound = errors.New("vector index not found")

	// ErrStoreCorrupt indicates the persisted vector index blob could not
	// be decoded. Never silently treated as an empty index.
	ErrStoreCorrupt = errors.New("vector index corrupt")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// index dimension. This is a programmer or data error and fails loudly.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// External service errors.

	// ErrExternalCall indicates an embedding or completion request failed.
	// Per-item failures are logged and skipped; the run continues.
	ErrExternalCall = errors.New("external call failed")

	// ErrLLMUnavailable indicates the completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Derivation errors.

	// ErrDependencyMissing indicates an improvement transcript arrived before
	// any onboarding transcript produced a base prompt. The item is not
	// ledgered and is retried once a base prompt exists.
	ErrDependencyMissing = errors.New("no base prompt to improve")
)
