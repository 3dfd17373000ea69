// Package chromem backs the semantic index with chromem-go, a pure Go
// embedded vector database. This is the zero-config default: no server,
// no API key, persistence to a local directory.
package chromem

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/agentcortex/agentcortex-go/semantic"
)

// Store implements semantic.Backend over a chromem-go database. Each
// namespace maps to its own collection.
type Store struct {
	db *chromem.DB
}

// New creates a store persisted under dir. An empty dir selects an
// in-memory database, which is useful for tests and throwaway agents.
func New(dir string) (*Store, error) {
	if dir == "" {
		return &Store{db: chromem.NewDB()}, nil
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	return &Store{db: db}, nil
}

func collectionName(namespace string) string {
	return "agentcortex_" + namespace
}

func (s *Store) collection(namespace string) (*chromem.Collection, error) {
	// Embeddings are always supplied by the caller, so the collection
	// carries no embedding func of its own.
	col, err := s.db.GetOrCreateCollection(collectionName(namespace), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return col, nil
}

func (s *Store) Upsert(ctx context.Context, namespace string, e semantic.Entry) error {
	col, err := s.collection(namespace)
	if err != nil {
		return err
	}
	err = col.AddDocument(ctx, chromem.Document{
		ID:        e.ID,
		Content:   e.Content,
		Metadata:  e.Metadata,
		Embedding: e.Embedding,
	})
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, namespace string, embedding []float32, n int) ([]semantic.Match, error) {
	col, err := s.collection(namespace)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults beyond the collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if n > count {
		n = count
	}

	results, err := col.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	matches := make([]semantic.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, semantic.Match{
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: float64(r.Similarity),
		})
	}
	return matches, nil
}

func (s *Store) Clear(ctx context.Context, namespace string) error {
	if err := s.db.DeleteCollection(collectionName(namespace)); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, namespace string) (int, error) {
	col := s.db.GetCollection(collectionName(namespace), nil)
	if col == nil {
		return 0, nil
	}
	return col.Count(), nil
}

// Close is a no-op; chromem persists writes as they happen.
func (s *Store) Close() error { return nil }
