package agentcortex

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/agentcortex/agentcortex-go/provider"
	"github.com/agentcortex/agentcortex-go/provider/mock"
	"github.com/agentcortex/agentcortex-go/semantic/chromem"
	"github.com/agentcortex/agentcortex-go/working"
)

// newTestStore opens a store on a throwaway directory with an
// in-memory vector backend and deterministic providers.
func newTestStore(t *testing.T, mutate func(*Config)) *MemoryStore {
	t.Helper()
	backend, err := chromem.New("")
	if err != nil {
		t.Fatalf("chromem: %v", err)
	}
	cfg := DefaultConfig("test-agent")
	cfg.PersistDir = t.TempDir()
	cfg.Generator = mock.NewGenerator()
	cfg.Embedder = mock.NewEmbedder()
	cfg.SemanticBackend = backend
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// vecEmbedder returns preset vectors, for tests that need exact
// similarities.
type vecEmbedder struct {
	vecs map[string][]float32
}

func (e *vecEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.vecs[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no vector for %q", text)
}

func (e *vecEmbedder) Dimensions() int { return 3 }

func episodicCount(t *testing.T, s *MemoryStore) int {
	t.Helper()
	n, err := s.Episodic().Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}

func TestOpenRequiresAgentID(t *testing.T) {
	if _, err := Open(Config{PersistDir: t.TempDir()}); err == nil {
		t.Fatal("Open accepted an empty agent id")
	}
}

func TestAddMessageNormalizesRoles(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	for _, role := range []string{"HumanMessage", "ai", "SYSTEM"} {
		if err := s.AddMessage(ctx, role, "content for "+role); err != nil {
			t.Fatalf("AddMessage(%q): %v", role, err)
		}
	}

	msgs := s.Messages()
	want := []working.Role{working.RoleUser, working.RoleAssistant, working.RoleSystem}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i, w := range want {
		if msgs[i].Role != w {
			t.Errorf("msgs[%d].Role = %q, want %q", i, msgs[i].Role, w)
		}
	}
}

func TestAutoCompression(t *testing.T) {
	gen := mock.NewGenerator(
		"Summary of the early conversation.",
		"- Alice prefers Go\n- Deadline is Friday",
	)
	s := newTestStore(t, func(cfg *Config) {
		cfg.MaxWorkingTokens = 20
		cfg.CompressionThreshold = 0.8
		cfg.Generator = gen
	})
	ctx := context.Background()

	// Four 16-char messages at 4 tokens each cross the threshold of 16
	// on the last add; the oldest two get compressed away.
	for i := 0; i < 4; i++ {
		content := fmt.Sprintf("turn %d padding..", i)
		if len(content) != 16 {
			t.Fatalf("fixture content %q is %d chars", content, len(content))
		}
		if err := s.AddMessage(ctx, "user", content); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("window has %d messages after compression, want 2", len(msgs))
	}
	if msgs[0].Content != "turn 2 padding.." {
		t.Errorf("oldest surviving message = %q", msgs[0].Content)
	}

	// One summary plus two promoted facts.
	if n := episodicCount(t, s); n != 3 {
		t.Errorf("episodic count = %d, want 3", n)
	}
	if n := s.Semantic().Count(ctx); n != 2 {
		t.Errorf("semantic count = %d, want 2", n)
	}

	records, err := s.Episodic().RecallRecent(ctx, 10)
	if err != nil {
		t.Fatalf("RecallRecent: %v", err)
	}
	var foundSummary bool
	for _, r := range records {
		if r.Metadata["type"] == "compression_summary" {
			foundSummary = true
			if r.Importance != 7 {
				t.Errorf("summary importance = %d, want 7", r.Importance)
			}
			if r.Content != "Summary of the early conversation." {
				t.Errorf("summary content = %q", r.Content)
			}
			if n, ok := r.Metadata["message_count"].(float64); !ok || int(n) != 2 {
				t.Errorf("summary message_count = %v, want 2", r.Metadata["message_count"])
			}
			if sess, _ := r.Metadata["session"].(string); sess == "" {
				t.Error("summary has no session tag")
			}
		} else if r.Importance != 8 {
			t.Errorf("promoted fact %q importance = %d, want 8", r.Content, r.Importance)
		}
	}
	if !foundSummary {
		t.Error("no compression summary in episodic log")
	}
}

func TestCompressionDeferredOnGeneratorFailure(t *testing.T) {
	gen := mock.NewGenerator("Recovered summary.", "- Fact from retry")
	gen.Err = provider.ErrGenerationUnavailable
	s := newTestStore(t, func(cfg *Config) {
		cfg.MaxWorkingTokens = 20
		cfg.CompressionThreshold = 0.8
		cfg.Generator = gen
	})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := s.AddMessage(ctx, "user", fmt.Sprintf("turn %d padding..", i)); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	// The failure never surfaces and nothing is evicted or stored.
	if len(s.Messages()) != 4 {
		t.Fatalf("window has %d messages, want all 4 kept", len(s.Messages()))
	}
	if n := episodicCount(t, s); n != 0 {
		t.Fatalf("episodic count = %d after failed compression, want 0", n)
	}

	// The generator recovers; the next add retries the pass.
	gen.Err = nil
	if err := s.AddMessage(ctx, "user", "turn 4 padding.."); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if len(s.Messages()) != 2 {
		t.Errorf("window has %d messages after retry, want 2", len(s.Messages()))
	}
	if n := episodicCount(t, s); n != 2 {
		t.Errorf("episodic count = %d after retry, want summary + fact", n)
	}
}

func TestCompressEmptyWindowIsNoOp(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	if err := s.Compress(ctx); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if n := episodicCount(t, s); n != 0 {
		t.Errorf("episodic count = %d, want 0", n)
	}

	// System messages alone are never compression targets.
	if err := s.AddMessage(ctx, "system", "You are a helpful assistant."); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if err := s.Compress(ctx); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if n := episodicCount(t, s); n != 0 {
		t.Errorf("episodic count = %d, want 0", n)
	}
	if len(s.Messages()) != 1 {
		t.Errorf("system message was evicted")
	}
}

func TestCompressEmptySummaryStillPromotesFacts(t *testing.T) {
	gen := mock.NewGenerator("", "- Lone fact")
	s := newTestStore(t, func(cfg *Config) {
		cfg.Generator = gen
	})
	ctx := context.Background()

	s.AddMessage(ctx, "user", "something worth a fact")
	s.AddMessage(ctx, "assistant", "noted")

	if err := s.Compress(ctx); err != nil {
		t.Fatalf("Compress: %v", err)
	}

	// No summary record, but the fact landed and eviction happened.
	if n := episodicCount(t, s); n != 1 {
		t.Fatalf("episodic count = %d, want just the fact", n)
	}
	records, err := s.Episodic().RecallRecent(ctx, 1)
	if err != nil {
		t.Fatalf("RecallRecent: %v", err)
	}
	if records[0].Content != "Lone fact" || records[0].Importance != 8 {
		t.Errorf("got %q importance %d, want promoted fact", records[0].Content, records[0].Importance)
	}
	if len(s.Messages()) != 1 {
		t.Errorf("window has %d messages, want 1 after evicting the oldest", len(s.Messages()))
	}
}

func TestAutoCompressDisabled(t *testing.T) {
	s := newTestStore(t, func(cfg *Config) {
		cfg.MaxWorkingTokens = 20
		cfg.AutoCompress = false
	})
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if err := s.AddMessage(ctx, "user", strings.Repeat("x", 16)); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}
	if len(s.Messages()) != 8 {
		t.Errorf("window compressed despite AutoCompress off")
	}
	if n := episodicCount(t, s); n != 0 {
		t.Errorf("episodic count = %d, want 0", n)
	}
}

func TestAutoExtractFactsDisabled(t *testing.T) {
	gen := mock.NewGenerator("Only a summary.")
	s := newTestStore(t, func(cfg *Config) {
		cfg.Generator = gen
		cfg.AutoExtractFacts = false
	})
	ctx := context.Background()

	s.AddMessage(ctx, "user", "hello there")
	s.AddMessage(ctx, "assistant", "hi")

	if err := s.Compress(ctx); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if n := gen.Calls(); n != 1 {
		t.Errorf("generator called %d times, want summarize only", n)
	}
	if n := episodicCount(t, s); n != 1 {
		t.Errorf("episodic count = %d, want summary only", n)
	}
	if n := s.Semantic().Count(ctx); n != 0 {
		t.Errorf("semantic count = %d, want 0", n)
	}
}

func TestNilGeneratorDisablesCompression(t *testing.T) {
	s := newTestStore(t, func(cfg *Config) {
		cfg.MaxWorkingTokens = 20
		cfg.Generator = nil
	})
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if err := s.AddMessage(ctx, "user", strings.Repeat("y", 16)); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}
	if len(s.Messages()) != 6 {
		t.Errorf("window has %d messages, want all 6 without a generator", len(s.Messages()))
	}
	if n := episodicCount(t, s); n != 0 {
		t.Errorf("episodic count = %d, want 0", n)
	}
}

func TestClearTiers(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	s.AddMessage(ctx, "user", "in the window")
	if err := s.Remember(ctx, "a durable fact"); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	if err := s.ClearTiers(ctx, TierWorking); err != nil {
		t.Fatalf("ClearTiers: %v", err)
	}
	if len(s.Messages()) != 0 {
		t.Error("working window survived a clear")
	}
	if n := episodicCount(t, s); n != 1 {
		t.Errorf("episodic count = %d, durable tiers must be untouched", n)
	}

	if err := s.ClearTiers(ctx, TierEpisodic, TierSemantic); err != nil {
		t.Fatalf("ClearTiers: %v", err)
	}
	if n := episodicCount(t, s); n != 0 {
		t.Errorf("episodic count = %d after clear", n)
	}
	if n := s.Semantic().Count(ctx); n != 0 {
		t.Errorf("semantic count = %d after clear", n)
	}

	if err := s.ClearTiers(ctx, Tier("bogus")); err == nil {
		t.Error("unknown tier accepted")
	}
}

func TestClearWipesEverything(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	s.AddMessage(ctx, "user", "hello")
	s.Remember(ctx, "fact one")
	s.Remember(ctx, "fact two")

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Working.MessageCount != 0 || st.Episodic.Count != 0 || st.Semantic.Count != 0 {
		t.Errorf("stats after clear = %+v", st)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	s.AddMessage(ctx, "user", "hello")
	s.Remember(ctx, "likes Go")

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.AgentID != "test-agent" {
		t.Errorf("AgentID = %q", st.AgentID)
	}
	if st.Working.MessageCount != 1 {
		t.Errorf("working message count = %d, want 1", st.Working.MessageCount)
	}
	if st.Episodic.Count != 1 {
		t.Errorf("episodic count = %d, want 1", st.Episodic.Count)
	}
	if st.Semantic.Count != 1 {
		t.Errorf("semantic count = %d, want 1", st.Semantic.Count)
	}
}

func TestSemanticAvailability(t *testing.T) {
	s := newTestStore(t, nil)
	if !s.SemanticAvailable() {
		t.Error("semantic tier should be available with backend and embedder")
	}

	bare := newTestStore(t, func(cfg *Config) {
		cfg.Embedder = nil
		cfg.SemanticBackend = nil
	})
	if bare.SemanticAvailable() {
		t.Error("semantic tier available without an embedder")
	}
}
