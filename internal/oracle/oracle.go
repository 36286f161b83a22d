// Package oracle wraps external text-generation services behind one
// small capability: given a prompt, return text. Callers must treat the
// output as untrusted prose and validate anything they parse out of it.
package oracle

import "context"

// Oracle is the decision/narration backend. One implementation exists
// per provider; everything above this package depends only on the
// interface.
type Oracle interface {
	// Invoke sends the prompt and returns the full response text.
	Invoke(ctx context.Context, prompt string) (string, error)

	// Stream sends the prompt and delivers response chunks to fn as
	// they arrive. A non-nil error from fn stops the stream.
	Stream(ctx context.Context, prompt string, fn func(chunk string) error) error
}
