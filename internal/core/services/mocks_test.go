package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
)

// --- Shared mock implementations for service tests ---

// mockConnector implements driven.Connector over an in-memory document set.
type mockConnector struct {
	docs    []domain.RawDocument
	listErr error
	readErr error
}

func (m *mockConnector) Type() string { return "mock" }

func (m *mockConnector) List(_ context.Context) ([]domain.RawDocument, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	listed := make([]domain.RawDocument, len(m.docs))
	for i, doc := range m.docs {
		listed[i] = domain.RawDocument{URI: doc.URI, MIMEType: doc.MIMEType}
	}
	return listed, nil
}

func (m *mockConnector) Read(_ context.Context, uri string) (*domain.RawDocument, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	for i := range m.docs {
		if m.docs[i].URI == uri {
			doc := m.docs[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockNormaliser passes raw bytes through as text.
type mockNormaliser struct {
	mimes []string
	err   error
}

func (m *mockNormaliser) SupportedMIMETypes() []string { return m.mimes }

func (m *mockNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return string(raw.Content), nil
}

// mockEmbedder returns canned vectors keyed by input text, or a default.
type mockEmbedder struct {
	dims          int
	vectors       map[string][]float32
	defaultVector []float32
	err           error
	calls         []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls = append(m.calls, text)
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.defaultVector != nil {
		return m.defaultVector, nil
	}
	v := make([]float32, m.dims)
	v[0] = 1
	return v, nil
}

func (m *mockEmbedder) Dimensions() int   { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embedder" }
func (m *mockEmbedder) Close() error      { return nil }

// mockFragmentStore keeps fragments in a map.
type mockFragmentStore struct {
	mu        sync.Mutex
	fragments map[string]domain.Fragment
	saveErr   error
	saveCalls int
}

func newMockFragmentStore() *mockFragmentStore {
	return &mockFragmentStore{fragments: make(map[string]domain.Fragment)}
}

func (m *mockFragmentStore) SaveFragments(_ context.Context, fragments []domain.Fragment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, f := range fragments {
		m.fragments[f.ID] = f
	}
	return nil
}

func (m *mockFragmentStore) GetFragment(_ context.Context, id string) (*domain.Fragment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fragments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (m *mockFragmentStore) CountFragments(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fragments), nil
}

// mockLedger implements driven.ProcessedLedger in memory.
type mockLedger struct {
	mu          sync.Mutex
	entries     map[string]bool
	order       []string
	containsErr error
	addErr      error
}

func newMockLedger() *mockLedger {
	return &mockLedger{entries: make(map[string]bool)}
}

func (m *mockLedger) Contains(_ context.Context, uri string) (bool, error) {
	if m.containsErr != nil {
		return false, m.containsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[uri], nil
}

func (m *mockLedger) Add(_ context.Context, uris ...string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, uri := range uris {
		if !m.entries[uri] {
			m.entries[uri] = true
			m.order = append(m.order, uri)
		}
	}
	return nil
}

func (m *mockLedger) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...), nil
}

// mockKV implements driven.KVStore in memory.
type mockKV struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
}

func newMockKV() *mockKV {
	return &mockKV{values: make(map[string]string)}
}

func (m *mockKV) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// mockTranscriptSource serves transcripts grouped by category.
type mockTranscriptSource struct {
	transcripts map[domain.TranscriptCategory][]domain.Transcript
	listErr     error
	readErr     error
}

func (m *mockTranscriptSource) List(_ context.Context, category domain.TranscriptCategory) ([]domain.Transcript, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	listed := make([]domain.Transcript, 0, len(m.transcripts[category]))
	for _, t := range m.transcripts[category] {
		listed = append(listed, domain.Transcript{URI: t.URI, Category: t.Category})
	}
	return listed, nil
}

func (m *mockTranscriptSource) Read(_ context.Context, uri string) (*domain.Transcript, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	for _, items := range m.transcripts {
		for i := range items {
			if items[i].URI == uri {
				t := items[i]
				return &t, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// llmCall records one completion request.
type llmCall struct {
	systemPrompt string
	userPrompt   string
	opts         driven.CompleteOptions
}

// mockLLM records calls and answers from a canned response function.
type mockLLM struct {
	respond func(systemPrompt, userPrompt string) (string, error)
	calls   []llmCall
}

func (m *mockLLM) Complete(_ context.Context, systemPrompt, userPrompt string, opts driven.CompleteOptions) (string, error) {
	m.calls = append(m.calls, llmCall{systemPrompt: systemPrompt, userPrompt: userPrompt, opts: opts})
	if m.respond != nil {
		return m.respond(systemPrompt, userPrompt)
	}
	return "generated text", nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Close() error      { return nil }

// mockPromptStore serves templates from a map, with trivial defaults for
// names it does not know.
type mockPromptStore struct {
	templates map[string]string
	loadErr   error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if t, ok := m.templates[name]; ok {
		return t, nil
	}
	switch name {
	case driven.PromptImproveAgent:
		return "improve %s with %s", nil
	case driven.PromptImproveFirstMessage:
		return "improve %s with %s and %s", nil
	default:
		return name + ": %s", nil
	}
}

func (m *mockPromptStore) Reload() {}

// mockArtifactStore implements driven.ArtifactStore in memory.
type mockArtifactStore struct {
	prompt          string
	hasPrompt       bool
	firstMessage    string
	hasFirstMessage bool

	promptReadErr  error
	promptSaveErr  error
	messageSaveErr error
}

func (m *mockArtifactStore) CurrentPrompt(_ context.Context) (string, error) {
	if m.promptReadErr != nil {
		return "", m.promptReadErr
	}
	if !m.hasPrompt {
		return "", domain.ErrNotFound
	}
	return m.prompt, nil
}

func (m *mockArtifactStore) SavePrompt(_ context.Context, content string) error {
	if m.promptSaveErr != nil {
		return m.promptSaveErr
	}
	m.prompt = content
	m.hasPrompt = true
	return nil
}

func (m *mockArtifactStore) CurrentFirstMessage(_ context.Context) (string, error) {
	if !m.hasFirstMessage {
		return "", domain.ErrNotFound
	}
	return m.firstMessage, nil
}

func (m *mockArtifactStore) SaveFirstMessage(_ context.Context, content string) error {
	if m.messageSaveErr != nil {
		return m.messageSaveErr
	}
	m.firstMessage = content
	m.hasFirstMessage = true
	return nil
}

// mockSchedulerStore implements driven.SchedulerStore in memory.
type mockSchedulerStore struct {
	mu      sync.Mutex
	tasks   map[string]domain.ScheduledTask
	results []domain.TaskResult
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{tasks: make(map[string]domain.ScheduledTask)}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	listed := make([]domain.ScheduledTask, 0, len(m.tasks))
	// Stable order: ingest before derivation, matching initialisation.
	for _, id := range []string{domain.TaskIDKnowledgeIngest, domain.TaskIDTranscriptDerivation} {
		if t, ok := m.tasks[id]; ok {
			listed = append(listed, t)
		}
	}
	for id, t := range m.tasks {
		if id != domain.TaskIDKnowledgeIngest && id != domain.TaskIDTranscriptDerivation {
			listed = append(listed, t)
		}
	}
	return listed, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = *task
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var history []domain.TaskResult
	for i := len(m.results) - 1; i >= 0 && len(history) < limit; i-- {
		if m.results[i].TaskID == taskID {
			history = append(history, m.results[i])
		}
	}
	return history, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error { return nil }
