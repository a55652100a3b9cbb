package port

import "context"

// Enricher abstracts an LLM completion backend. Implementations receive a
// fully rendered prompt and return the model's raw text response; prompt
// construction and response parsing live with the caller.
type Enricher interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Embedder abstracts a text embedding backend.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}
