package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driving"
	"github.com/voiceforge-labs/voiceforge-cli/internal/logger"
)

// Completion budgets per derivation type. Prompt generation gets room for a
// full structured document; the opening message is a couple of sentences.
const (
	promptMaxTokens               = 4000
	firstMessageMaxTokens         = 500
	improvedFirstMessageMaxTokens = 1000

	derivationTemperature = 0.7
)

// System prompts framing each derivation's completion call. The detailed
// instructions live in the user-editable templates; these only set the
// model's role and are not customisable.
const (
	systemAgentPrompt         = "You are an AI assistant specialised in analysing conversation transcripts and creating detailed voice agent prompts."
	systemFirstMessage        = "You are an AI assistant specialised in analysing conversation transcripts and creating initial welcome messages."
	systemImprovePrompt       = "You are an expert AI prompt engineer specialised in refining AI voice agent prompts."
	systemImproveFirstMessage = "You are an expert AI prompt engineer specialised in refining AI voice agent first messages."
)

// Ensure DerivationService implements the interface.
var _ driving.TranscriptProcessor = (*DerivationService)(nil)

// DerivationService derives agent configuration artifacts from new
// conversation transcripts. Transcripts are processed one at a time, in
// category order, because onboarding writes the artifacts improvement
// reads and all derivations overwrite the same artifact slot.
type DerivationService struct {
	source    driven.TranscriptSource
	ledger    driven.ProcessedLedger
	llm       driven.LLMService
	prompts   driven.PromptStore
	artifacts driven.ArtifactStore
}

// NewDerivationService creates a derivation service.
func NewDerivationService(
	source driven.TranscriptSource,
	ledger driven.ProcessedLedger,
	llm driven.LLMService,
	prompts driven.PromptStore,
	artifacts driven.ArtifactStore,
) *DerivationService {
	return &DerivationService{
		source:    source,
		ledger:    ledger,
		llm:       llm,
		prompts:   prompts,
		artifacts: artifacts,
	}
}

// ProcessNew scans the category directories for transcripts absent from the
// ledger and processes them in category order. Returns the number of
// transcripts processed. Per-item failures are logged and leave the item
// un-ledgered for retry; they never abort the scan.
func (s *DerivationService) ProcessNew(ctx context.Context) (int, error) {
	processed := 0
	for _, category := range domain.CategoryProcessingOrder {
		listed, err := s.source.List(ctx, category)
		if err != nil {
			return processed, fmt.Errorf("listing %s transcripts: %w", category, err)
		}

		for _, transcript := range listed {
			if err := ctx.Err(); err != nil {
				return processed, err
			}

			ledgered, err := s.ledger.Contains(ctx, transcript.URI)
			if err != nil {
				return processed, fmt.Errorf("checking ledger for %s: %w", transcript.URI, err)
			}
			if ledgered {
				continue
			}

			logger.Info("processing %s transcript %s", category, transcript.URI)
			if err := s.processOne(ctx, transcript.URI, category); err != nil {
				logger.Error("processing %s: %v", transcript.URI, err)
				continue
			}
			processed++
		}
	}
	return processed, nil
}

// processOne runs the category-specific derivation for a single transcript.
// The ledger row is written last, after the category's artifact writes, so
// an interrupted derivation is retried on the next scan.
func (s *DerivationService) processOne(ctx context.Context, uri string, category domain.TranscriptCategory) error {
	transcript, err := s.source.Read(ctx, uri)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if strings.TrimSpace(transcript.Content) == "" {
		return fmt.Errorf("%w: transcript is empty", domain.ErrInvalidInput)
	}

	switch category {
	case domain.CategoryOnboarding:
		if err := s.deriveOnboarding(ctx, transcript.Content); err != nil {
			return err
		}
	case domain.CategoryImprovement:
		if err := s.deriveImprovement(ctx, transcript.Content); err != nil {
			return err
		}
	case domain.CategoryGenerated:
		// Terminal: recorded, no derivation.
	default:
		return fmt.Errorf("%w: category %q", domain.ErrInvalidInput, category)
	}

	if err := s.ledger.Add(ctx, uri); err != nil {
		return fmt.Errorf("updating ledger: %w", err)
	}
	return nil
}

// deriveOnboarding generates a fresh agent prompt and first message from a
// requirements-gathering transcript, overwriting both artifact slots.
func (s *DerivationService) deriveOnboarding(ctx context.Context, transcript string) error {
	prompt := s.complete(ctx, systemAgentPrompt, driven.PromptAgentFromTranscript, promptMaxTokens, "generating prompt", transcript)
	if err := s.artifacts.SavePrompt(ctx, prompt); err != nil {
		return fmt.Errorf("saving prompt: %w", err)
	}

	firstMessage := s.complete(ctx, systemFirstMessage, driven.PromptFirstMessage, firstMessageMaxTokens, "generating first message", transcript)
	if err := s.artifacts.SaveFirstMessage(ctx, firstMessage); err != nil {
		// The prompt is the primary deliverable; a failed first-message
		// save is logged and the item still counts as processed.
		logger.Error("saving first message: %v", err)
	}
	return nil
}

// deriveImprovement revises the current prompt from a feedback transcript.
// Without a base prompt the item fails with ErrDependencyMissing and is not
// ledgered, so it is retried once an onboarding derivation has succeeded.
// The first-message half is best-effort: its absence or failure is logged
// and the item is still ledgered, because the feedback has already been
// incorporated into the prompt and reprocessing would not change that.
func (s *DerivationService) deriveImprovement(ctx context.Context, transcript string) error {
	current, err := s.artifacts.CurrentPrompt(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrDependencyMissing
		}
		return fmt.Errorf("reading current prompt: %w", err)
	}
	if strings.TrimSpace(current) == "" {
		return domain.ErrDependencyMissing
	}

	revised := s.complete(ctx, systemImprovePrompt, driven.PromptImproveAgent, promptMaxTokens, "generating improved prompt", transcript, current)
	if err := s.artifacts.SavePrompt(ctx, revised); err != nil {
		return fmt.Errorf("saving revised prompt: %w", err)
	}

	currentFirst, err := s.artifacts.CurrentFirstMessage(ctx)
	if err != nil {
		logger.Warn("no current first message to improve: %v", err)
		return nil
	}

	revisedFirst := s.complete(ctx, systemImproveFirstMessage, driven.PromptImproveFirstMessage,
		improvedFirstMessageMaxTokens, "generating improved first message", transcript, revised, currentFirst)
	if err := s.artifacts.SaveFirstMessage(ctx, revisedFirst); err != nil {
		logger.Error("saving revised first message: %v", err)
	}
	return nil
}

// complete renders the named template with the given arguments and sends it
// to the completion service. A failed call yields an explanatory
// placeholder rather than an error: the artifact slot is still overwritten,
// matching the policy that a transcript is consumed exactly once.
func (s *DerivationService) complete(ctx context.Context, systemPrompt, promptName string, maxTokens int, action string, args ...any) string {
	template, err := s.prompts.Load(promptName)
	if err != nil {
		logger.Error("loading %s template: %v", promptName, err)
		return fmt.Sprintf("Error %s: %v", action, err)
	}

	result, err := s.llm.Complete(ctx, systemPrompt, fmt.Sprintf(template, args...), driven.CompleteOptions{
		MaxTokens:   maxTokens,
		Temperature: derivationTemperature,
	})
	if err != nil {
		logger.Error("%s: %v", action, err)
		return fmt.Sprintf("Error %s: %v", action, err)
	}
	return result
}
