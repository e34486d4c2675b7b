// Package summarize produces bullet-point summaries of circular text
// through an external completion service, map-reduce style: one call
// per chunk, then one combining call over the surviving partials.
package summarize

import (
	"context"
	"fmt"
)

// Client is a single completion backend. Every call may fail
// independently; the Summarizer decides what a failure costs.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewClient selects a backend by name. An empty or "none" backend, or
// a missing credential, returns a nil Client: summarization is then
// disabled for the run without failing it.
func NewClient(backend, apiKey, model string) (Client, error) {
	switch backend {
	case "", "none":
		return nil, nil
	case "openai":
		if apiKey == "" {
			return nil, nil
		}
		return NewOpenAIClient(apiKey, model), nil
	case "anthropic":
		if apiKey == "" {
			return nil, nil
		}
		return NewAnthropicClient(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown summarization backend %q", backend)
	}
}
