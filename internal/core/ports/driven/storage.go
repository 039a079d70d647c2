package driven

import (
	"context"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

// FragmentStore persists fragments. Backed by SQLite.
//
// The fragment store and the vector index form a matched pair: every
// identifier present in the index must resolve here. The store grows
// monotonically; fragments are never updated or deleted.
type FragmentStore interface {
	// SaveFragments stores a batch of fragments.
	SaveFragments(ctx context.Context, fragments []domain.Fragment) error

	// GetFragment retrieves a fragment by ID.
	// Returns domain.ErrNotFound if the fragment does not exist.
	GetFragment(ctx context.Context, id string) (*domain.Fragment, error)

	// CountFragments returns the number of stored fragments.
	CountFragments(ctx context.Context) (int, error)
}

// ProcessedLedger is a durable record of source files that have completed
// processing. An identity is added only after all derived side effects have
// been written, making the ledger a correctness gate against
// double-processing, not merely a cache.
type ProcessedLedger interface {
	// Contains reports whether the file identity is already ledgered.
	Contains(ctx context.Context, uri string) (bool, error)

	// Add records file identities as processed.
	Add(ctx context.Context, uris ...string) error

	// List returns all ledgered identities.
	List(ctx context.Context) ([]string, error)
}

// KVStore persists small named values, such as the last-updated marker.
type KVStore interface {
	// Set stores a value under a key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Get retrieves a value. Returns domain.ErrNotFound for absent keys.
	Get(ctx context.Context, key string) (string, error)
}

// Well-known KV keys.
const (
	// KeyLastUpdated records when the knowledge base last gained fragments,
	// as an RFC 3339 timestamp.
	KeyLastUpdated = "knowledge_last_updated"
)

// SchedulerStore persists scheduled task state and execution history.
type SchedulerStore interface {
	// GetTask retrieves a scheduled task by ID.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all scheduled tasks.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask persists a task's state.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordResult logs a task execution result.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns recent results for a task, most recent first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory removes old task results beyond the retention limit.
	PruneHistory(ctx context.Context, keep int) error
}
