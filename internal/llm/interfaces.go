// Package llm provides clients for local and hosted language models. All
// outbound calls are wrapped with a circuit breaker so a dead or slow model
// endpoint degrades AI features instead of taking requests down with it.
package llm

import "context"

// TextGenerator is the interface for text completion. Contact parsing, tag
// suggestion, and person summaries all use single-prompt completion style.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}

// EmbeddingGenerator is the interface for generating vector embeddings of
// memory content.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}
