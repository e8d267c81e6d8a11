package core

import "context"

// ChatOptions tune a single completion call.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// ModelCaller is the black-box LLM: prompt and messages in, raw text out.
// Implementations fail with a transport/API error; classification into
// ErrUpstreamModel happens at the service boundary.
type ModelCaller interface {
	Complete(ctx context.Context, model string, turns []Turn, opts ChatOptions) (string, error)
}
