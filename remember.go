package agentcortex

import (
	"context"
	"fmt"
	"log/slog"
)

// Near-duplicate candidates are compared against the closest existing
// entries only; anything further away than this is not worth checking.
const (
	dedupPoolSize       = 5
	dedupPoolSimilarity = 0.5
)

type rememberOptions struct {
	importance int
	semantic   bool
}

// RememberOption configures a Remember call.
type RememberOption func(*rememberOptions)

// WithImportance sets the episodic eviction weight, 1 (trivial) to 10
// (critical). Defaults to 5.
func WithImportance(importance int) RememberOption {
	return func(o *rememberOptions) { o.importance = importance }
}

// WithoutSemantic keeps the memory out of the long-term index; it is
// written to the episodic log only.
func WithoutSemantic() RememberOption {
	return func(o *rememberOptions) { o.semantic = false }
}

// Remember stores a memory across the durable tiers. The episodic
// record is always written. The long-term index write is skipped when
// the content is judged a near-duplicate of an existing fact, and
// degrades silently when the semantic tier is unavailable; episodic
// storage failures are returned.
func (s *MemoryStore) Remember(ctx context.Context, content string, opts ...RememberOption) error {
	o := rememberOptions{importance: DefaultImportance, semantic: true}
	for _, opt := range opts {
		opt(&o)
	}

	storeSemantic := o.semantic
	if storeSemantic && s.dedupe != nil && s.index.Available() {
		if s.dedupe.IsDuplicate(ctx, content, s.dedupPool(ctx, content)) {
			slog.Debug("duplicate memory, semantic write skipped", "agent_id", s.cfg.AgentID)
			storeSemantic = false
		}
	}

	if err := s.log.Store(ctx, content, nil, o.importance); err != nil {
		return fmt.Errorf("store episodic: %w", err)
	}

	if storeSemantic {
		if err := s.index.Store(ctx, content, nil); err != nil {
			slog.Debug("semantic write skipped", "agent_id", s.cfg.AgentID, "error", err)
		}
	}
	return nil
}

// dedupPool fetches the semantic entries nearest to content as the
// comparison pool for duplicate detection. A failing search degrades to
// an empty pool, which reduces dedup to exact matching.
func (s *MemoryStore) dedupPool(ctx context.Context, content string) []string {
	matches, err := s.index.Search(ctx, content, dedupPoolSize, dedupPoolSimilarity)
	if err != nil {
		slog.Debug("dedup pool unavailable", "agent_id", s.cfg.AgentID, "error", err)
		return nil
	}
	pool := make([]string, len(matches))
	for i, m := range matches {
		pool[i] = m.Content
	}
	return pool
}
