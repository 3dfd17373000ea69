package dedup

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
		delta    float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0, 0.001},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0, 0.001},
		{"similar", []float32{1, 1, 0}, []float32{1, 0, 0}, 0.707, 0.01},
		{"empty", []float32{}, []float32{}, 0.0, 0.001},
		{"different lengths", []float32{1, 0}, []float32{1, 0, 0}, 0.0, 0.001},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("Cosine(%v, %v) = %f, want %f within %f", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

// fixedEmbedder returns preset vectors per text and fails for unknown
// text.
type fixedEmbedder struct {
	vecs map[string][]float32
	err  error
}

func (e *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vecs[text]; ok {
		return v, nil
	}
	return nil, errors.New("no vector for " + text)
}

func (e *fixedEmbedder) Dimensions() int { return 3 }

func TestIsDuplicateExactMatch(t *testing.T) {
	d := New(0.92, nil)
	ctx := context.Background()

	if !d.IsDuplicate(ctx, "x", []string{"x"}) {
		t.Error("exact match not detected")
	}
	if d.IsDuplicate(ctx, "x", nil) {
		t.Error("empty pool produced a duplicate")
	}
	if d.IsDuplicate(ctx, "x", []string{"y"}) {
		t.Error("non-match detected as duplicate without an embedder")
	}
}

func TestIsDuplicateBySimilarity(t *testing.T) {
	emb := &fixedEmbedder{vecs: map[string][]float32{
		"the user likes python":  {1, 0, 0},
		"user likes python":      {0.99, 0.141, 0},
		"deadline is march 15th": {0, 1, 0},
	}}
	d := New(0.92, emb)
	ctx := context.Background()

	if !d.IsDuplicate(ctx, "the user likes python", []string{"user likes python"}) {
		t.Error("near-duplicate below threshold")
	}
	if d.IsDuplicate(ctx, "the user likes python", []string{"deadline is march 15th"}) {
		t.Error("orthogonal content judged duplicate")
	}
}

func TestEmbedFailureFallsBackToExact(t *testing.T) {
	d := New(0.92, &fixedEmbedder{err: errors.New("backend down")})
	ctx := context.Background()

	// Exact match still works.
	if !d.IsDuplicate(ctx, "x", []string{"x"}) {
		t.Error("exact match lost when embedding fails")
	}
	// Similarity check degrades to not-duplicate, never an error.
	if d.IsDuplicate(ctx, "x", []string{"y"}) {
		t.Error("failed embedding judged duplicate")
	}
}

func TestDeduplicate(t *testing.T) {
	emb := &fixedEmbedder{vecs: map[string][]float32{
		"alpha":       {1, 0, 0},
		"alpha too":   {0.999, 0.0447, 0},
		"beta":        {0, 1, 0},
		"seen before": {0, 0, 1},
	}}
	d := New(0.92, emb)
	ctx := context.Background()

	candidates := []string{"alpha", "alpha too", "beta", "seen before"}
	existing := []string{"seen before"}

	got := d.Deduplicate(ctx, candidates, existing)
	want := []string{"alpha", "beta"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Inputs are not mutated.
	if len(existing) != 1 || existing[0] != "seen before" {
		t.Errorf("existing pool mutated: %v", existing)
	}
	if len(candidates) != 4 {
		t.Errorf("candidates mutated: %v", candidates)
	}
}

func TestDeduplicateRepeatedCandidates(t *testing.T) {
	d := New(0.92, nil)
	ctx := context.Background()

	got := d.Deduplicate(ctx, []string{"x", "x", "x"}, nil)
	if len(got) != 1 {
		t.Errorf("got %v, want a single x", got)
	}
}

func TestDefaultThreshold(t *testing.T) {
	d := New(0, nil)
	if d.threshold != DefaultThreshold {
		t.Errorf("threshold = %f, want %f", d.threshold, DefaultThreshold)
	}
}
