package generation

import "context"

// Options tunes a single generation call.
type Options struct {
	// Temperature controls sampling randomness. Zero uses the model default.
	Temperature float32

	// MaxOutputTokens caps the response length. Zero uses the model default.
	MaxOutputTokens int
}

// Generator produces text from a prompt.
//
// Implementations do not retry; callers decide whether a failure is worth
// repeating. Errors wrap one of the sentinels in errors.go.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}
