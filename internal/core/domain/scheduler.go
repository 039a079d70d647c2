package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the stable task identifier.
	ID string

	// Name is the human-readable task name.
	Name string

	// Interval is how often the task runs.
	Interval time.Duration

	// LastRun is when the task last started.
	LastRun time.Time

	// NextRun is when the task is next due.
	NextRun time.Time

	// LastError holds the error message from the last failed run.
	LastError string

	// LastSuccess is when the task last completed without error.
	LastSuccess time.Time

	// Enabled controls whether the scheduler runs this task.
	Enabled bool
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when execution began.
	StartedAt time.Time

	// EndedAt is when execution finished.
	EndedAt time.Time

	// Success indicates whether the run completed without error.
	Success bool

	// Error holds the failure message when Success is false.
	Error string

	// ItemsProcessed counts documents or transcripts handled in the run.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	// Interval is how often the task runs.
	Interval time.Duration

	// Enabled controls whether the task runs at all.
	Enabled bool
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
// Both pipelines re-check their input directories every 30 seconds,
// matching the cadence the conversation runtime expects.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TaskConfigs: map[string]TaskConfig{
			TaskIDKnowledgeIngest: {
				Interval: 30 * time.Second,
				Enabled:  true,
			},
			TaskIDTranscriptDerivation: {
				Interval: 30 * time.Second,
				Enabled:  true,
			},
		},
	}
}

// Well-known task identifiers.
const (
	// TaskIDKnowledgeIngest is the periodic knowledge base ingestion task.
	TaskIDKnowledgeIngest = "knowledge-ingest"

	// TaskIDTranscriptDerivation is the periodic transcript derivation task.
	TaskIDTranscriptDerivation = "transcript-derivation"
)
