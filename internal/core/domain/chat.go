package domain

// Chat message roles, matching the wire roles of the conversation runtime.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single message in a conversation history.
type ChatMessage struct {
	// Role is one of RoleSystem, RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string
}

// ChatHistory is an ordered conversation history. The retrieval service
// mutates it in place when injecting context, so it is passed by pointer.
type ChatHistory struct {
	Messages []ChatMessage
}

// Last returns the most recent message, or nil if the history is empty.
func (h *ChatHistory) Last() *ChatMessage {
	if len(h.Messages) == 0 {
		return nil
	}
	return &h.Messages[len(h.Messages)-1]
}

// Append adds a message to the end of the history.
func (h *ChatHistory) Append(msg ChatMessage) {
	h.Messages = append(h.Messages, msg)
}
