package llm

import "context"

// Option allows optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	N           int    // Generation count, fixed to 1 by the pipeline
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(max int) Option {
	return func(o *Options) {
		o.MaxTokens = max
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider defines the contract for any generation backend. Errors are
// typed and never retried internally; retry policy belongs to the
// enqueuing layer.
type Provider interface {
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
