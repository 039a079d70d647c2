package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAgentFromTranscript turns an onboarding transcript into a full
	// agent prompt. The template expects a %s placeholder for the transcript.
	PromptAgentFromTranscript = "agent_prompt"

	// PromptFirstMessage generates the agent's opening message from an
	// onboarding transcript. Expects a %s placeholder for the transcript.
	PromptFirstMessage = "first_message"

	// PromptImproveAgent revises the current agent prompt from feedback.
	// Expects %s (transcript) and %s (current prompt) placeholders, in order.
	PromptImproveAgent = "improve_prompt"

	// PromptImproveFirstMessage revises the opening message from feedback.
	// Expects %s (transcript), %s (revised prompt) and %s (current first
	// message) placeholders, in order.
	PromptImproveFirstMessage = "improve_first_message"

	// PromptContextPreamble introduces retrieved knowledge when it is
	// injected into a conversation. Expects a %s placeholder for the
	// formatted context blocks.
	PromptContextPreamble = "context_preamble"
)
