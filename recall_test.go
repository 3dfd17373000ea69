package agentcortex

import (
	"context"
	"fmt"
	"testing"
)

func TestRecallMergesTiers(t *testing.T) {
	emb := &vecEmbedder{vecs: map[string][]float32{
		"alpha service owns billing": {1, 0, 0},
		"beta service owns auth":     {0, 1, 0},
		"who owns billing":           {0.97, 0.243, 0},
	}}
	s := newTestStore(t, func(cfg *Config) {
		cfg.Embedder = emb
	})
	ctx := context.Background()

	if err := s.Remember(ctx, "alpha service owns billing", WithImportance(6)); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if err := s.Remember(ctx, "beta service owns auth", WithImportance(2)); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	got, err := s.Recall(ctx, "who owns billing")
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(got), got)
	}

	// The semantic hit outranks both episodic scores and absorbs the
	// episodic duplicate of the same content.
	if got[0].Content != "alpha service owns billing" || got[0].Source != TierSemantic {
		t.Errorf("got[0] = %+v, want semantic alpha", got[0])
	}
	if got[0].Score < 0.9 {
		t.Errorf("got[0].Score = %f, want high similarity", got[0].Score)
	}
	if got[1].Content != "beta service owns auth" || got[1].Source != TierEpisodic {
		t.Errorf("got[1] = %+v, want episodic beta", got[1])
	}
	if got[1].Score != 0.2 {
		t.Errorf("got[1].Score = %f, want importance/10", got[1].Score)
	}
}

func TestRecallEpisodicOnlyStore(t *testing.T) {
	s := newTestStore(t, func(cfg *Config) {
		cfg.Embedder = nil
		cfg.SemanticBackend = nil
	})
	ctx := context.Background()

	s.Remember(ctx, "plain fact", WithImportance(10))

	got, err := s.Recall(ctx, "anything")
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Source != TierEpisodic || got[0].Score != 1.0 {
		t.Errorf("got %+v, want episodic score 1.0", got[0])
	}
}

func TestRecallWithoutEpisodic(t *testing.T) {
	emb := &vecEmbedder{vecs: map[string][]float32{
		"indexed fact": {1, 0, 0},
		"query":        {1, 0, 0},
	}}
	s := newTestStore(t, func(cfg *Config) {
		cfg.Embedder = emb
	})
	ctx := context.Background()

	s.Remember(ctx, "indexed fact")

	got, err := s.Recall(ctx, "query", WithoutEpisodic())
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(got) != 1 || got[0].Source != TierSemantic {
		t.Fatalf("got %+v, want only the semantic hit", got)
	}
}

func TestRecallLimit(t *testing.T) {
	s := newTestStore(t, func(cfg *Config) {
		cfg.Embedder = nil
		cfg.SemanticBackend = nil
	})
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if err := s.Remember(ctx, fmt.Sprintf("fact number %d", i)); err != nil {
			t.Fatalf("Remember: %v", err)
		}
	}

	got, err := s.Recall(ctx, "facts", WithLimit(3))
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d results with limit 3", len(got))
	}

	// Episodic contribution is capped at 10 regardless of limit.
	got, err = s.Recall(ctx, "facts", WithLimit(15))
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("got %d results with limit 15, want 10", len(got))
	}
}

func TestRecallDedupKeepsHigherScoredSource(t *testing.T) {
	emb := &vecEmbedder{vecs: map[string][]float32{
		"gamma holds the lock": {0, 0, 1},
	}}
	s := newTestStore(t, func(cfg *Config) {
		cfg.Embedder = emb
	})
	ctx := context.Background()

	// Present in both tiers; recall must report it once, from the
	// higher-scored semantic side.
	if err := s.Remember(ctx, "gamma holds the lock", WithImportance(4)); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	got, err := s.Recall(ctx, "gamma holds the lock")
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1: %+v", len(got), got)
	}
	if got[0].Source != TierSemantic || got[0].Score < 0.9 {
		t.Errorf("got %+v, want semantic with similarity ~1", got[0])
	}
}
