package agentcortex

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/agentcortex/agentcortex-go/semantic"
)

// ScoredMemory is one recall result. Score is the semantic similarity
// for index hits and importance/10 for episodic records, so both rank
// on a comparable 0..1 scale.
type ScoredMemory struct {
	Content string  `json:"content"`
	Source  Tier    `json:"source"`
	Score   float64 `json:"score"`
}

type recallOptions struct {
	limit    int
	episodic bool
}

// RecallOption configures a Recall call.
type RecallOption func(*recallOptions)

// WithLimit caps the number of returned memories. Defaults to 5.
func WithLimit(n int) RecallOption {
	return func(o *recallOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithoutEpisodic restricts recall to the semantic index.
func WithoutEpisodic() RecallOption {
	return func(o *recallOptions) { o.episodic = false }
}

// Recall returns the memories most relevant to query, best first. It
// merges meaning-based matches from the long-term index with recent
// episodic records, drops exact content duplicates keeping the higher
// scored occurrence, and truncates to the limit. An unavailable
// semantic tier degrades recall to episodic results only.
func (s *MemoryStore) Recall(ctx context.Context, query string, opts ...RecallOption) ([]ScoredMemory, error) {
	o := recallOptions{limit: 5, episodic: true}
	for _, opt := range opts {
		opt(&o)
	}

	var results []ScoredMemory
	if s.index.Available() {
		matches, err := s.index.Search(ctx, query, o.limit, semantic.DefaultMinSimilarity)
		if err != nil {
			slog.Debug("semantic recall unavailable", "agent_id", s.cfg.AgentID, "error", err)
		}
		for _, m := range matches {
			results = append(results, ScoredMemory{
				Content: m.Content,
				Source:  TierSemantic,
				Score:   m.Similarity,
			})
		}
	}

	if o.episodic {
		n := o.limit
		if n > 10 {
			n = 10
		}
		recent, err := s.log.RecallRecent(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("recall recent: %w", err)
		}
		for _, r := range recent {
			results = append(results, ScoredMemory{
				Content: r.Content,
				Source:  TierEpisodic,
				Score:   float64(r.Importance) / 10,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	seen := make(map[string]struct{}, len(results))
	unique := results[:0]
	for _, r := range results {
		if _, dup := seen[r.Content]; dup {
			continue
		}
		seen[r.Content] = struct{}{}
		unique = append(unique, r)
	}
	if len(unique) > o.limit {
		unique = unique[:o.limit]
	}
	return unique, nil
}
