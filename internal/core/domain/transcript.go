package domain

// TranscriptCategory identifies which derivation applies to a transcript,
// determined by the input directory the transcript file lives in.
type TranscriptCategory string

// Available transcript categories.
const (
	// CategoryOnboarding holds transcripts of requirements-gathering
	// conversations for a brand-new agent. Deriving one produces a fresh
	// prompt and first message.
	CategoryOnboarding TranscriptCategory = "onboarding"

	// CategoryImprovement holds transcripts where the user gives feedback on
	// an existing agent. Deriving one revises the current prompt and first
	// message, so it depends on an onboarding derivation having succeeded.
	CategoryImprovement TranscriptCategory = "improvement"

	// CategoryGenerated holds transcripts of conversations with the
	// generated agent itself. These are terminal: recorded as processed,
	// no derivation.
	CategoryGenerated TranscriptCategory = "generated"
)

// CategoryProcessingOrder lists categories in the order new transcripts must
// be processed. Onboarding runs before improvement because improvement reads
// the artifacts that onboarding writes.
var CategoryProcessingOrder = []TranscriptCategory{
	CategoryOnboarding,
	CategoryImprovement,
	CategoryGenerated,
}

// IsValid returns true if the category is recognised.
func (c TranscriptCategory) IsValid() bool {
	switch c {
	case CategoryOnboarding, CategoryImprovement, CategoryGenerated:
		return true
	default:
		return false
	}
}

// Derives returns true if processing a transcript of this category produces
// or revises artifacts, as opposed to only being marked processed.
func (c TranscriptCategory) Derives() bool {
	return c == CategoryOnboarding || c == CategoryImprovement
}

// String returns the string representation.
func (c TranscriptCategory) String() string {
	return string(c)
}

// Transcript is a conversation transcript discovered in one of the category
// directories.
type Transcript struct {
	// URI is the transcript file path. It doubles as the ledger identity.
	URI string

	// Category is derived from the directory the file was found in.
	Category TranscriptCategory

	// Content is the raw Markdown transcript text.
	Content string
}

// AgentConfig is the current generated configuration for the target voice
// agent: a single logical slot, overwritten wholesale by each successful
// derivation and read (never mutated) by the conversation runtime.
type AgentConfig struct {
	// Prompt is the agent's system prompt, in Markdown.
	Prompt string

	// FirstMessage is the opening line the agent speaks on a new call.
	FirstMessage string
}
