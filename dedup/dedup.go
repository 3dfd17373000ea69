// Package dedup detects near-duplicate memories before they reach the
// durable tiers, so the same fact phrased twice does not pollute
// retrieval results.
package dedup

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/agentcortex/agentcortex-go/provider"
)

// DefaultThreshold is the cosine similarity above which two memories
// are considered duplicates. 0.92 works well for factual sentences;
// lower it for broader deduplication.
const DefaultThreshold = 0.92

// Cosine computes the cosine similarity of two vectors. It is 0 when
// the lengths differ or either norm is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Deduplicator judges whether a candidate memory duplicates existing
// ones, by exact match first and embedding similarity second. A nil or
// failing embedder silently reduces it to exact matching; duplicate
// checks never fail.
type Deduplicator struct {
	threshold float64
	embedder  provider.Embedder
}

// New creates a deduplicator. A non-positive threshold selects
// DefaultThreshold; embedder may be nil for exact-match-only operation.
func New(threshold float64, embedder provider.Embedder) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Deduplicator{threshold: threshold, embedder: embedder}
}

// IsDuplicate reports whether candidate is an exact or near match of
// any item in existing.
func (d *Deduplicator) IsDuplicate(ctx context.Context, candidate string, existing []string) bool {
	if len(existing) == 0 {
		return false
	}
	if slices.Contains(existing, candidate) {
		return true
	}
	if d.embedder == nil {
		return false
	}

	candidateVec, err := d.embedder.Embed(ctx, candidate)
	if err != nil {
		slog.Debug("dedup falling back to exact match", "error", err)
		return false
	}
	for _, mem := range existing {
		memVec, err := d.embedder.Embed(ctx, mem)
		if err != nil {
			slog.Debug("dedup falling back to exact match", "error", err)
			return false
		}
		if Cosine(candidateVec, memVec) >= d.threshold {
			return true
		}
	}
	return false
}

// Deduplicate filters candidates in order, dropping any that duplicate
// the existing pool or an earlier accepted candidate. The caller's
// slices are never mutated.
func (d *Deduplicator) Deduplicate(ctx context.Context, candidates, existing []string) []string {
	seen := make([]string, len(existing), len(existing)+len(candidates))
	copy(seen, existing)

	var unique []string
	for _, candidate := range candidates {
		if !d.IsDuplicate(ctx, candidate, seen) {
			unique = append(unique, candidate)
			seen = append(seen, candidate)
		}
	}
	return unique
}
