package agentcortex

import (
	"os"
	"path/filepath"

	"github.com/agentcortex/agentcortex-go/dedup"
	"github.com/agentcortex/agentcortex-go/provider"
	"github.com/agentcortex/agentcortex-go/semantic"
)

// Defaults for the tunable knobs.
const (
	DefaultMaxWorkingTokens     = 4096
	DefaultCompressionThreshold = 0.8
	DefaultMaxEpisodicEntries   = 1000
	DefaultImportance           = 5
)

// Config configures a MemoryStore. The zero value is not usable; start
// from DefaultConfig and override what you need.
type Config struct {
	// AgentID namespaces all durable memory. Required.
	AgentID string

	// PersistDir is where the episodic database and the default
	// semantic index live. Defaults to ~/.agentcortex.
	PersistDir string

	// MaxWorkingTokens is the working window's token budget.
	MaxWorkingTokens int

	// CompressionThreshold is the fraction of MaxWorkingTokens at
	// which compression triggers.
	CompressionThreshold float64

	// DedupThreshold is the cosine similarity at or above which a
	// candidate memory counts as a duplicate.
	DedupThreshold float64

	// MaxEpisodicEntries caps the episodic log per namespace.
	MaxEpisodicEntries int

	// EnableDedup gates near-duplicate detection before semantic
	// writes.
	EnableDedup bool

	// AutoCompress summarizes and evicts old working messages when the
	// window fills.
	AutoCompress bool

	// AutoExtractFacts promotes long-term facts during compression.
	AutoExtractFacts bool

	// Generator produces summaries and extracted facts. Nil disables
	// compression; the working window then grows unbounded.
	Generator provider.Generator

	// Embedder turns text into vectors for the semantic tier and
	// dedup. Nil disables both; the store degrades to episodic-only.
	Embedder provider.Embedder

	// SemanticBackend overrides the default local vector store. Leave
	// nil to use an embedded index under PersistDir. A caller-supplied
	// backend is not closed by MemoryStore.Close.
	SemanticBackend semantic.Backend
}

// DefaultConfig returns the standard configuration for an agent.
func DefaultConfig(agentID string) Config {
	return Config{
		AgentID:              agentID,
		PersistDir:           defaultPersistDir(),
		MaxWorkingTokens:     DefaultMaxWorkingTokens,
		CompressionThreshold: DefaultCompressionThreshold,
		DedupThreshold:       dedup.DefaultThreshold,
		MaxEpisodicEntries:   DefaultMaxEpisodicEntries,
		EnableDedup:          true,
		AutoCompress:         true,
		AutoExtractFacts:     true,
	}
}

func defaultPersistDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agentcortex"
	}
	return filepath.Join(home, ".agentcortex")
}

// withDefaults fills unset scalar knobs so a hand-built Config with
// just an AgentID behaves like DefaultConfig. Boolean flags are taken
// as given.
func (c Config) withDefaults() Config {
	if c.PersistDir == "" {
		c.PersistDir = defaultPersistDir()
	}
	if c.MaxWorkingTokens <= 0 {
		c.MaxWorkingTokens = DefaultMaxWorkingTokens
	}
	if c.CompressionThreshold <= 0 {
		c.CompressionThreshold = DefaultCompressionThreshold
	}
	if c.DedupThreshold <= 0 {
		c.DedupThreshold = dedup.DefaultThreshold
	}
	if c.MaxEpisodicEntries <= 0 {
		c.MaxEpisodicEntries = DefaultMaxEpisodicEntries
	}
	return c
}
