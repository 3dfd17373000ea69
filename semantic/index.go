// Package semantic implements the long-term knowledge tier: facts
// stored as embeddings and searched by meaning. The vector store behind
// it is pluggable; see the chromem and pgvector subpackages.
package semantic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/agentcortex/agentcortex-go/provider"
)

// DefaultMinSimilarity is the search threshold below which matches are
// considered noise.
const DefaultMinSimilarity = 0.3

// Entry is a fact stored in the index.
type Entry struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Match is a search result with its similarity to the query, from 1
// (same meaning) down to -1.
type Match struct {
	Content    string
	Metadata   map[string]string
	Similarity float64
}

// Backend is the vector store an Index runs on. Implementations must
// fully partition data by namespace and treat Upsert with an existing
// id as a replace.
type Backend interface {
	Upsert(ctx context.Context, namespace string, e Entry) error
	Query(ctx context.Context, namespace string, embedding []float32, n int) ([]Match, error)
	Clear(ctx context.Context, namespace string) error
	Count(ctx context.Context, namespace string) (int, error)
	Close() error
}

// EntryID derives the deterministic id for content: same content, same
// id, so re-storing a fact overwrites instead of duplicating.
func EntryID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// Index binds one agent namespace to a backend and an embedder. Either
// may be absent; Available reports whether semantic features can work.
type Index struct {
	namespace string
	backend   Backend
	embedder  provider.Embedder
}

// NewIndex creates an index for the namespace. backend and embedder may
// be nil, in which case the index is permanently unavailable and every
// write or search reports provider.ErrEmbeddingUnavailable.
func NewIndex(namespace string, backend Backend, embedder provider.Embedder) *Index {
	return &Index{namespace: namespace, backend: backend, embedder: embedder}
}

// Available reports whether the index has both a backend and an
// embedder. Callers that can degrade check this instead of probing with
// a write.
func (i *Index) Available() bool {
	return i.backend != nil && i.embedder != nil
}

// Store embeds content and upserts it under its deterministic id.
func (i *Index) Store(ctx context.Context, content string, metadata map[string]string) error {
	return i.StoreWithID(ctx, EntryID(content), content, metadata)
}

// StoreWithID embeds content and upserts it under an explicit id.
func (i *Index) StoreWithID(ctx context.Context, id, content string, metadata map[string]string) error {
	if !i.Available() {
		return fmt.Errorf("%w: no semantic backend configured", provider.ErrEmbeddingUnavailable)
	}
	vec, err := i.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed content: %w", err)
	}
	err = i.backend.Upsert(ctx, i.namespace, Entry{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		Embedding: vec,
	})
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Search embeds the query and returns up to n matches with similarity
// at or above minSimilarity, best first.
func (i *Index) Search(ctx context.Context, query string, n int, minSimilarity float64) ([]Match, error) {
	if !i.Available() {
		return nil, fmt.Errorf("%w: no semantic backend configured", provider.ErrEmbeddingUnavailable)
	}
	if n <= 0 {
		n = 5
	}
	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := i.backend.Query(ctx, i.namespace, vec, n)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	matches := results[:0]
	for _, m := range results {
		if m.Similarity >= minSimilarity {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// Clear drops the namespace's entire index contents.
func (i *Index) Clear(ctx context.Context) error {
	if i.backend == nil {
		return nil
	}
	return i.backend.Clear(ctx, i.namespace)
}

// Count returns the number of indexed entries. A missing or failing
// backend reports 0, never an error; this accessor is read-only and
// must not surface setup problems.
func (i *Index) Count(ctx context.Context) int {
	if i.backend == nil {
		return 0
	}
	count, err := i.backend.Count(ctx, i.namespace)
	if err != nil {
		slog.Debug("semantic count unavailable", "namespace", i.namespace, "error", err)
		return 0
	}
	return count
}
