package agentcortex

import (
	"context"
	"fmt"

	"github.com/agentcortex/agentcortex-go/working"
)

// Stats is a point-in-time snapshot of memory usage across tiers.
type Stats struct {
	AgentID  string        `json:"agent_id"`
	Working  working.Stats `json:"working"`
	Episodic TierStats     `json:"episodic"`
	Semantic TierStats     `json:"semantic"`
}

// TierStats holds a durable tier's record count.
type TierStats struct {
	Count int `json:"count"`
}

// Stats reports current usage. The semantic count is best effort and
// reads as 0 when that tier is unavailable.
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	count, err := s.log.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("episodic count: %w", err)
	}
	return &Stats{
		AgentID:  s.cfg.AgentID,
		Working:  s.window.Stats(),
		Episodic: TierStats{Count: count},
		Semantic: TierStats{Count: s.index.Count(ctx)},
	}, nil
}
