// Package textgen abstracts the external text generation service the
// pipeline calls for activity decomposition, schema replays, and consensus
// proposals. The service is a black box: callers hand it a prompt and get
// raw text back, and the parser chain deals with whatever shape that text
// has.
package textgen

import "context"

// Request describes one generation call.
type Request struct {
	// Prompt is the full prompt text, already enriched by the prompt
	// builder.
	Prompt string

	// MaxTokens caps the response length. Zero means the client default.
	MaxTokens int
}

// Client generates text for a request. Implementations must honor context
// cancellation and return an error rather than blocking past the caller's
// deadline.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to the Client interface.
type Func func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
