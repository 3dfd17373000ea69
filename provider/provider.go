// Package provider defines the opaque model capabilities the memory
// system depends on: text generation for compression and embeddings for
// semantic storage. Implementations live in subpackages (anthropic,
// openai, ollama, mock).
package provider

import (
	"context"
	"errors"
)

// ErrGenerationUnavailable marks a failed text-generation call. Callers
// that can degrade (deferred compression) check for it with errors.Is.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// ErrEmbeddingUnavailable marks a failed embedding call. Semantic
// features degrade when they see it; nothing above the orchestrator
// should ever observe it.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// Generator produces free-form text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder maps text to a fixed-dimension vector. Implementations must
// return the same vector for the same text within a process lifetime.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
