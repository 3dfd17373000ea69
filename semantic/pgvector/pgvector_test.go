package pgvector

import (
	"context"
	"os"
	"testing"

	"github.com/agentcortex/agentcortex-go/semantic"
)

// Integration tests need a live Postgres with the vector extension:
//
//	AGENTCORTEX_TEST_POSTGRES_DSN="postgres://localhost/agentcortex_test?sslmode=disable" go test ./semantic/pgvector
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("AGENTCORTEX_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AGENTCORTEX_TEST_POSTGRES_DSN not set")
	}
	s, err := New(dsn, 3)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		s.Clear(context.Background(), "pgtest")
		s.Close()
	})
	return s
}

func TestUpsertQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Upsert(ctx, "pgtest", semantic.Entry{
		ID:        "a",
		Content:   "alpha",
		Metadata:  map[string]string{"kind": "fact"},
		Embedding: []float32{1, 0, 0},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	err = s.Upsert(ctx, "pgtest", semantic.Entry{
		ID:        "b",
		Content:   "beta",
		Embedding: []float32{0, 1, 0},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Query(ctx, "pgtest", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Content != "alpha" {
		t.Errorf("best match = %q, want alpha", got[0].Content)
	}
	if got[0].Similarity < 0.99 {
		t.Errorf("similarity = %f, want ~1.0", got[0].Similarity)
	}
	if got[0].Metadata["kind"] != "fact" {
		t.Errorf("metadata = %v", got[0].Metadata)
	}
}

func TestUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Upsert(ctx, "pgtest", semantic.Entry{ID: "a", Content: "first", Embedding: []float32{1, 0, 0}})
	s.Upsert(ctx, "pgtest", semantic.Entry{ID: "a", Content: "second", Embedding: []float32{1, 0, 0}})

	count, err := s.Count(ctx, "pgtest")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestClearNamespace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Upsert(ctx, "pgtest", semantic.Entry{ID: "a", Content: "alpha", Embedding: []float32{1, 0, 0}})
	s.Upsert(ctx, "pgtest-other", semantic.Entry{ID: "b", Content: "beta", Embedding: []float32{0, 1, 0}})
	defer s.Clear(ctx, "pgtest-other")

	if err := s.Clear(ctx, "pgtest"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	count, _ := s.Count(ctx, "pgtest")
	if count != 0 {
		t.Errorf("pgtest count = %d after clear, want 0", count)
	}
	other, _ := s.Count(ctx, "pgtest-other")
	if other != 1 {
		t.Errorf("pgtest-other count = %d, want 1", other)
	}
}
