package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	artifactfile "github.com/voiceforge-labs/voiceforge-cli/internal/adapters/driven/artifacts/file"
	configfile "github.com/voiceforge-labs/voiceforge-cli/internal/adapters/driven/config/file"
	embeddingopenai "github.com/voiceforge-labs/voiceforge-cli/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/voiceforge-labs/voiceforge-cli/internal/adapters/driven/llm/openai"
	"github.com/voiceforge-labs/voiceforge-cli/internal/adapters/driven/storage/sqlite"
	"github.com/voiceforge-labs/voiceforge-cli/internal/connectors/filesystem"
	"github.com/voiceforge-labs/voiceforge-cli/internal/connectors/transcripts"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driving"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/services"
	"github.com/voiceforge-labs/voiceforge-cli/internal/logger"
	"github.com/voiceforge-labs/voiceforge-cli/internal/normalisers/pdf"
	"github.com/voiceforge-labs/voiceforge-cli/internal/normalisers/plaintext"
)

// baseDirFlag overrides the default ~/.voiceforge base directory.
var baseDirFlag string

// Services wired by ensureServices. Tests inject stubs here directly.
var (
	ingestService     driving.Ingestor
	retrievalService  driving.Retriever
	derivationService driving.TranscriptProcessor
	schedulerService  *services.Scheduler
	storageCloser     func() error
)

// baseDir resolves the base directory holding configuration, data and the
// content folders.
func baseDir() (string, error) {
	if baseDirFlag != "" {
		return baseDirFlag, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".voiceforge"), nil
}

// ensureServices builds the full service graph from configuration. Already
// injected services (tests) are left alone.
func ensureServices() error {
	if ingestService != nil && retrievalService != nil && derivationService != nil && schedulerService != nil {
		return nil
	}

	base, err := baseDir()
	if err != nil {
		return err
	}

	config, err := configfile.NewConfigStore(base)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	prompts, err := configfile.NewPromptStore(filepath.Join(base, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	apiKey := config.GetString("openai.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no OpenAI API key: set openai.api_key in %s or the OPENAI_API_KEY environment variable", config.Path())
	}

	embedder, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
		APIKey:     apiKey,
		Model:      config.GetString("openai.embedding_model"),
		Dimensions: config.GetInt("openai.embedding_dimensions"),
	})
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}

	llm, err := llmopenai.NewLLMService(llmopenai.Config{
		APIKey: apiKey,
		Model:  config.GetString("openai.model"),
	})
	if err != nil {
		return fmt.Errorf("creating completion service: %w", err)
	}

	dataDir := filepath.Join(base, "data")
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	storageCloser = store.Close

	artifacts, err := artifactfile.NewStore(filepath.Join(base, "artifacts"))
	if err != nil {
		return fmt.Errorf("opening artifact store: %w", err)
	}

	knowledgeDir := config.GetString("knowledge.path")
	if knowledgeDir == "" {
		knowledgeDir = filepath.Join(base, "knowledge")
	}
	transcriptsDir := config.GetString("transcripts.path")
	if transcriptsDir == "" {
		transcriptsDir = filepath.Join(base, "transcripts")
	}

	source := transcripts.New(transcriptsDir)
	if err := source.EnsureDirs(); err != nil {
		return err
	}

	if err := pdf.CheckAvailable(); err != nil {
		logger.Warn("PDF extraction unavailable: %v", err)
		logger.Warn("%s", pdf.InstallInstructions())
	}

	indexPath := filepath.Join(dataDir, "vectors.idx")

	ingestService = services.NewIngestService(
		filesystem.New(knowledgeDir),
		[]driven.Normaliser{plaintext.New(), pdf.New()},
		embedder,
		store.FragmentStore(),
		store.IngestLedger(),
		store.KVStore(),
		indexPath,
	)
	retrievalService = services.NewRetrievalService(
		embedder,
		store.FragmentStore(),
		prompts,
		indexPath,
	)
	derivationService = services.NewDerivationService(
		source,
		store.TranscriptLedger(),
		llm,
		prompts,
		artifacts,
	)
	schedulerService = services.NewScheduler(
		schedulerConfigFrom(config),
		store.SchedulerStore(),
		ingestService,
		derivationService,
		func(ctx context.Context) { retrievalService.Reload(ctx) },
	)
	return nil
}

// schedulerConfigFrom applies configured intervals over the defaults.
func schedulerConfigFrom(config driven.ConfigStore) domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	for _, taskID := range []string{domain.TaskIDKnowledgeIngest, domain.TaskIDTranscriptDerivation} {
		key := "schedule." + taskID + ".interval_seconds"
		if seconds := config.GetInt(key); seconds > 0 {
			task := cfg.TaskConfigs[taskID]
			task.Interval = time.Duration(seconds) * time.Second
			cfg.TaskConfigs[taskID] = task
		}
	}
	return cfg
}

// closeStorage releases the database handle after a command finishes.
func closeStorage() {
	if storageCloser != nil {
		if err := storageCloser(); err != nil {
			logger.Warn("closing storage: %v", err)
		}
		storageCloser = nil
	}
}
