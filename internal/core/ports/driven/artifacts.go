package driven

import "context"

// ArtifactStore holds the current generated agent configuration: one prompt
// and one first message, each a single slot overwritten wholesale by each
// successful derivation.
//
// Writes must be atomic replaces so a concurrent reader of the slot can
// observe a transient old-then-new value but never a half-written one.
type ArtifactStore interface {
	// CurrentPrompt returns the current agent prompt.
	// Returns domain.ErrNotFound if no onboarding derivation has succeeded yet.
	CurrentPrompt(ctx context.Context) (string, error)

	// SavePrompt overwrites the current agent prompt.
	SavePrompt(ctx context.Context, content string) error

	// CurrentFirstMessage returns the current opening message.
	// Returns domain.ErrNotFound if absent.
	CurrentFirstMessage(ctx context.Context) (string, error)

	// SaveFirstMessage overwrites the current opening message.
	SaveFirstMessage(ctx context.Context, content string) error
}
