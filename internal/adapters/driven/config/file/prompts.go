package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAgentFromTranscript: `Turn Transcript into Detailed Voice Agent Prompt.

You are given a transcript of a conversation between a user and an AI voice agent. The goal of the agent in the transcript was to ask relevant questions and collect the contextual information needed to generate a tailored AI voice agent for the user.

Based on the transcript, create a detailed, well-structured AI voice agent prompt in markdown. This prompt will define the behaviour, tone, and conversation flow for the new AI voice agent the user wants to create.

Structure the output exactly as follows:

# [Agent Name] Prompt

## Identity & Purpose
Who the agent is, what company or brand it represents, and its main goal during calls.

## Voice & Persona

### Personality
- The tone and attitude the agent should have.

### Speech Characteristics
- How the agent should sound (clear, concise, uses contractions, avoids jargon).

## Conversation Flow

### Introduction
How the agent introduces itself and the purpose of the call.

### Core Dialogue Topics
The main questions or information the agent gathers or delivers, as a clear sequence of steps.

### Objection Handling
How the agent responds to scepticism, disinterest, or objections.

### Closing
How the agent wraps up, with options for different outcomes.

## Response Guidelines
Answer length, how the agent asks questions, and the tone used when referencing the user's replies.

## Knowledge Base
Specific information the agent should reference during calls.

## Ideal Customer Profile
Who the agent is trying to speak with.

Output only the markdown prompt itself, with no introductory text.

Here is the transcript of the conversation to base the prompt on:

%s`,

	driven.PromptFirstMessage: `Turn Transcript into First Message Only.

You are given a transcript of a conversation between a user and an AI voice agent that collected the information needed to generate a tailored AI voice agent for the user.

Based on the transcript, generate only the very first message the new AI voice assistant should say when starting a call. The message should introduce the assistant, clearly state its purpose, and match the tone of the user's intent.

Do not include follow-up questions or full scripts. Output only the initial message, exactly as the assistant would say it.

Here is the transcript of the conversation to base the message on:

%s`,

	driven.PromptImproveAgent: `Refine AI Voice Agent Prompt Based on User Feedback.

You are an expert prompt engineer refining an existing AI voice agent prompt. You are given a transcript in which the user provides feedback on the agent and discusses how they want to improve it, followed by the agent's current markdown prompt.

Analyse the feedback, suggestions and desired changes in the transcript, then edit the current prompt to incorporate them. Adjust Identity & Purpose, Voice & Persona, Conversation Flow, Objection Handling, Response Guidelines, Knowledge Base or Ideal Customer Profile as the feedback requires; retain the original content of any section the feedback does not touch.

The output must be the entire, edited agent prompt in the same markdown structure, with no introductory text.

Here is the transcript:

%s

Here is the prompt to be changed:

%s`,

	driven.PromptImproveFirstMessage: `Refine AI Voice Agent's First Message Based on User Feedback.

You are an expert prompt engineer refining an AI voice agent's opening message. Rewrite the agent's first spoken message based on the user feedback in the transcript below, keeping it consistent with the agent's overall purpose as described by its current prompt.

Transcript (user feedback):

%s

Current agent prompt (context only):

%s

Current first message (to be edited):

%s

The output must be only the revised first message text, with no introductory text and no markdown formatting.`,

	driven.PromptContextPreamble: `Here is some relevant context that may help answer the user's question:

%s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.voiceforge/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".voiceforge", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# VoiceForge Prompts

This directory contains customisable prompts used by the transcript
derivation pipeline and knowledge retrieval.

## Files

- ` + "`agent_prompt.txt`" + ` - Turns an onboarding transcript into a full agent prompt
- ` + "`first_message.txt`" + ` - Generates the agent's opening message
- ` + "`improve_prompt.txt`" + ` - Revises the agent prompt from feedback calls
- ` + "`improve_first_message.txt`" + ` - Revises the opening message from feedback calls
- ` + "`context_preamble.txt`" + ` - Introduces retrieved knowledge in a conversation

## Customisation

Edit any file to customise behaviour. Changes take effect on the next
run of the pipeline.

## Format Placeholders

Prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (the transcript, prompt or context being processed)

Ensure customised prompts keep placeholders in the documented order.
`
	return os.WriteFile(path, []byte(content), 0600)
}
