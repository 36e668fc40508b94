package revise

import "context"

// Completer generates text from a system and a user prompt.
type Completer interface {
	// Complete returns the generated text. Returns EUPSTREAM when the
	// service reply carries no completion.
	Complete(ctx context.Context, system, user string) (string, error)
}
