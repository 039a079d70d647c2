package services

import (
	"context"
	"sync"
	"time"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driving"
	"github.com/voiceforge-labs/voiceforge-cli/internal/logger"
)

// resultHistoryLimit caps how many task results are retained per task.
const resultHistoryLimit = 100

// tickInterval is how often the loop checks for due tasks. Shorter than the
// task intervals so a 30-second task does not drift by a full tick.
const tickInterval = 5 * time.Second

// Scheduler drives the periodic re-checks of both pipelines. Due tasks run
// inline and sequentially within a tick: derivation overwrites the shared
// artifact slot and ingestion owns the index/fragment pair, so concurrent
// task runs would race.
type Scheduler struct {
	config     domain.SchedulerConfig
	store      driven.SchedulerStore
	ingestor   driving.Ingestor
	processor  driving.TranscriptProcessor
	onIngested func(context.Context)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. onIngested, if non-nil, is called after
// an ingestion run that added fragments, so the caller can hot-reload the
// retrieval side.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	ingestor driving.Ingestor,
	processor driving.TranscriptProcessor,
	onIngested func(context.Context),
) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		ingestor:   ingestor,
		processor:  processor,
		onIngested: onIngested,
	}
}

// Start begins the scheduler loop. Blocks until Stop is called or the
// context is cancelled. Due tasks are checked immediately on startup.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	// Registered under the lock: once Stop observes running, Wait cannot
	// return before run exits.
	s.wg.Add(1)
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: initialising tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop shuts the scheduler down, waiting for the in-flight tick to finish.
// In-flight single-file work completes; interrupted work is retried on the
// next start because ledger rows are written last.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks ensures the configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	tasks := []struct {
		id   string
		name string
	}{
		{domain.TaskIDKnowledgeIngest, "Knowledge Ingest"},
		{domain.TaskIDTranscriptDerivation, "Transcript Derivation"},
	}
	for _, t := range tasks {
		cfg := s.config.GetTaskConfig(t.id)
		if err := s.ensureTask(ctx, t.id, t.name, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task row in the store. A new task is due
// immediately so the first poll does not wait a full interval.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now(),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run covers the whole loop with the WaitGroup, not individual ticks, so
// Stop's Wait cannot return in the window between a ticker fire and the
// tick starting.
func (s *Scheduler) run(ctx context.Context) error {
	defer s.wg.Done()

	s.tick(ctx)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs every due task, one after another. Task order follows
// initialisation order: ingestion before derivation.
func (s *Scheduler) tick(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: listing tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes one task inline and records its outcome.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDKnowledgeIngest:
		result.ItemsProcessed, err = s.runIngest(ctx)
	case domain.TaskIDTranscriptDerivation:
		result.ItemsProcessed, err = s.processor.ProcessNew(ctx)
	default:
		logger.Warn("scheduler: unknown task id %s", task.ID)
		return
	}

	result.EndedAt = time.Now()
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		task.LastError = err.Error()
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Error("scheduler: saving task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		logger.Error("scheduler: recording result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, resultHistoryLimit); pruneErr != nil {
		logger.Error("scheduler: pruning history: %v", pruneErr)
	}
}

func (s *Scheduler) runIngest(ctx context.Context) (int, error) {
	added, err := s.ingestor.RunIngestion(ctx)
	if err != nil {
		return 0, err
	}
	if added && s.onIngested != nil {
		s.onIngested(ctx)
	}

	status, statusErr := s.ingestor.Status(ctx)
	if statusErr != nil || status == nil {
		return 0, nil
	}
	return status.DocumentsProcessed, nil
}
