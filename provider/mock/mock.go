// Package mock provides deterministic in-process providers for tests.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
)

// Embedder generates deterministic embeddings from a text hash, so the
// same text always maps to the same unit vector and distinct texts are
// near-orthogonal with high probability.
type Embedder struct {
	dims int
}

// NewEmbedder returns a 384-dimension deterministic embedder.
func NewEmbedder() *Embedder {
	return &Embedder{dims: 384}
}

func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))

	// LCG seeded by the text hash.
	seed := h.Sum64()
	vec := make([]float32, m.dims)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vec), nil
}

func (m *Embedder) Dimensions() int { return m.dims }

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}

// Generator replays scripted responses in order. When the script runs
// out it keeps returning the final response; with no script it returns
// empty text. Err, when set, is returned as-is on every call.
type Generator struct {
	mu        sync.Mutex
	Responses []string
	Err       error

	// Prompts records every prompt passed to Generate.
	Prompts []string

	next int
}

// NewGenerator returns a Generator that replies with responses in order.
func NewGenerator(responses ...string) *Generator {
	return &Generator{Responses: responses}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Responses) == 0 {
		return "", nil
	}
	if g.next >= len(g.Responses) {
		return g.Responses[len(g.Responses)-1], nil
	}
	resp := g.Responses[g.next]
	g.next++
	return resp, nil
}

// Calls reports how many times Generate has been invoked.
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Prompts)
}
