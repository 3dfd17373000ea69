// Package agentcortex provides tiered memory for conversational
// agents: a bounded in-context working window, a durable recent-history
// log, and a long-term semantic index, with automatic summarization
// when the window fills.
package agentcortex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/agentcortex/agentcortex-go/compress"
	"github.com/agentcortex/agentcortex-go/dedup"
	"github.com/agentcortex/agentcortex-go/episodic"
	"github.com/agentcortex/agentcortex-go/semantic"
	"github.com/agentcortex/agentcortex-go/semantic/chromem"
	"github.com/agentcortex/agentcortex-go/working"
)

// Tier names one of the three memory tiers.
type Tier string

const (
	TierWorking  Tier = "working"
	TierEpisodic Tier = "episodic"
	TierSemantic Tier = "semantic"
)

// MemoryStore orchestrates the three memory tiers for one agent. It
// routes new memories through dedup into the durable tiers, compresses
// the working window when it fills, and merges recall results.
//
// A MemoryStore assumes a single caller sequence; wrap it in an
// AsyncStore to share it across goroutines.
type MemoryStore struct {
	cfg    Config
	window *working.Window
	log    *episodic.Log
	index  *semantic.Index
	dedupe *dedup.Deduplicator
	comp   *compress.Compressor

	// session tags compression summaries written during this process
	// lifetime.
	session string

	// ownedBackend is the semantic backend Open constructed itself,
	// closed on Close. Caller-supplied backends are left alone.
	ownedBackend semantic.Backend
}

// Open creates a MemoryStore from cfg. The persist directory is created
// if needed. When no semantic backend is supplied and an embedder is
// available, an embedded vector store is opened under PersistDir.
func Open(cfg Config) (*MemoryStore, error) {
	cfg = cfg.withDefaults()
	if cfg.AgentID == "" {
		return nil, errors.New("agent id is required")
	}
	if err := os.MkdirAll(cfg.PersistDir, 0o755); err != nil {
		return nil, fmt.Errorf("create persist dir: %w", err)
	}

	log, err := episodic.Open(
		filepath.Join(cfg.PersistDir, cfg.AgentID+"_episodic.db"),
		cfg.AgentID, cfg.MaxEpisodicEntries)
	if err != nil {
		return nil, fmt.Errorf("open episodic log: %w", err)
	}

	backend := cfg.SemanticBackend
	var owned semantic.Backend
	if backend == nil && cfg.Embedder != nil {
		backend, err = chromem.New(filepath.Join(cfg.PersistDir, "semantic"))
		if err != nil {
			log.Close()
			return nil, fmt.Errorf("open semantic backend: %w", err)
		}
		owned = backend
	}

	s := &MemoryStore{
		cfg:          cfg,
		window:       working.NewWindow(cfg.MaxWorkingTokens, cfg.CompressionThreshold),
		log:          log,
		index:        semantic.NewIndex(cfg.AgentID, backend, cfg.Embedder),
		comp:         compress.New(cfg.Generator),
		session:      ulid.Make().String(),
		ownedBackend: owned,
	}
	if cfg.EnableDedup {
		s.dedupe = dedup.New(cfg.DedupThreshold, cfg.Embedder)
	}
	return s, nil
}

// AgentID returns the namespace this store writes under.
func (s *MemoryStore) AgentID() string { return s.cfg.AgentID }

// Working exposes the working window tier directly.
func (s *MemoryStore) Working() *working.Window { return s.window }

// Episodic exposes the episodic log tier directly.
func (s *MemoryStore) Episodic() *episodic.Log { return s.log }

// Semantic exposes the long-term index tier directly.
func (s *MemoryStore) Semantic() *semantic.Index { return s.index }

// Close releases the episodic database and any semantic backend that
// Open created itself.
func (s *MemoryStore) Close() error {
	errs := []error{s.log.Close()}
	if s.ownedBackend != nil {
		errs = append(errs, s.ownedBackend.Close())
	}
	return errors.Join(errs...)
}

// AddMessage appends a conversation turn to the working window. Role
// names from external frameworks are normalized first. When the window
// crosses its compression threshold and AutoCompress is on, a
// compression pass runs before returning; generation failures defer
// that pass to a later call, only storage errors surface.
func (s *MemoryStore) AddMessage(ctx context.Context, role, content string) error {
	s.window.Add(working.NormalizeRole(role), content)

	if s.cfg.AutoCompress && s.window.NeedsCompression() {
		return s.compressWorkingMemory(ctx)
	}
	return nil
}

// Messages returns the working window contents in order.
func (s *MemoryStore) Messages() []working.Message {
	return s.window.Messages()
}

// Compress manually triggers one compression pass over the working
// window, regardless of the threshold.
func (s *MemoryStore) Compress(ctx context.Context) error {
	return s.compressWorkingMemory(ctx)
}

// compressWorkingMemory summarizes the oldest working messages into the
// episodic log, promotes extracted facts long-term, and evicts exactly
// the summarized messages. Both generation calls happen before any
// write, so a generation failure leaves every tier untouched and the
// next trigger retries the same pass.
func (s *MemoryStore) compressWorkingMemory(ctx context.Context) error {
	targets := s.window.CompressionTargets()
	if len(targets) == 0 {
		return nil
	}

	summary, err := s.comp.Summarize(ctx, targets)
	if err != nil {
		slog.Debug("compression deferred", "agent_id", s.cfg.AgentID, "error", err)
		return nil
	}

	var facts []string
	if s.cfg.AutoExtractFacts {
		facts, err = s.comp.ExtractFacts(ctx, targets)
		if err != nil {
			slog.Debug("compression deferred", "agent_id", s.cfg.AgentID, "error", err)
			return nil
		}
	}

	// An empty summary is nothing to persist, not a failure.
	if summary != "" {
		meta := map[string]any{
			"type":          "compression_summary",
			"session":       s.session,
			"message_count": len(targets),
		}
		if err := s.log.Store(ctx, summary, meta, 7); err != nil {
			return fmt.Errorf("store summary: %w", err)
		}
	}

	for _, fact := range facts {
		if err := s.Remember(ctx, fact, WithImportance(8)); err != nil {
			return fmt.Errorf("store fact: %w", err)
		}
	}

	evicted := s.window.PopOldest(len(targets))
	slog.Debug("compressed working memory",
		"agent_id", s.cfg.AgentID,
		"evicted", len(evicted),
		"facts", len(facts),
		"summary", summary != "")
	return nil
}

// ClearTiers wipes the named tiers. An unknown tier name is an error,
// reported before anything is cleared.
func (s *MemoryStore) ClearTiers(ctx context.Context, tiers ...Tier) error {
	for _, t := range tiers {
		switch t {
		case TierWorking, TierEpisodic, TierSemantic:
		default:
			return fmt.Errorf("unknown memory tier %q", t)
		}
	}
	for _, t := range tiers {
		switch t {
		case TierWorking:
			s.window.Clear()
		case TierEpisodic:
			if err := s.log.Clear(ctx); err != nil {
				return fmt.Errorf("clear episodic: %w", err)
			}
		case TierSemantic:
			if err := s.index.Clear(ctx); err != nil {
				return fmt.Errorf("clear semantic: %w", err)
			}
		}
	}
	return nil
}

// Clear wipes all three tiers.
func (s *MemoryStore) Clear(ctx context.Context) error {
	return s.ClearTiers(ctx, TierWorking, TierEpisodic, TierSemantic)
}

// SemanticAvailable reports whether the long-term tier is usable, i.e.
// both a vector backend and an embedder are configured.
func (s *MemoryStore) SemanticAvailable() bool {
	return s.index.Available()
}
