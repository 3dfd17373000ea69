package agentcortex

import (
	"context"
	"fmt"
	"strings"
)

const contextHeader = "[Memory Context]"

type contextOptions struct {
	query     string
	maxTokens int
	limit     int
}

// ContextOption configures a GetContext call.
type ContextOption func(*contextOptions)

// WithQuery focuses the context on memories relevant to q instead of
// the most recent ones.
func WithQuery(q string) ContextOption {
	return func(o *contextOptions) { o.query = q }
}

// WithMaxTokens sets the approximate token budget for the context
// block. Defaults to 500.
func WithMaxTokens(n int) ContextOption {
	return func(o *contextOptions) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithContextLimit caps how many memories are considered. Defaults
// to 5.
func WithContextLimit(n int) ContextOption {
	return func(o *contextOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

// GetContext formats a memory block ready to inject into a system
// prompt:
//
//	[Memory Context]
//	- User's name is Alice
//	- Prefers Python
//
// With a query the memories come from Recall; otherwise the most
// recent episodic records are used. Bullets are added greedily while
// the token budget holds, stopping at the first one that would exceed
// it; a bullet is never truncated. Returns "" when nothing fits.
func (s *MemoryStore) GetContext(ctx context.Context, opts ...ContextOption) (string, error) {
	o := contextOptions{maxTokens: 500, limit: 5}
	for _, opt := range opts {
		opt(&o)
	}

	var contents []string
	if o.query != "" {
		memories, err := s.Recall(ctx, o.query, WithLimit(o.limit))
		if err != nil {
			return "", err
		}
		for _, m := range memories {
			contents = append(contents, m.Content)
		}
	} else {
		recent, err := s.log.RecallRecent(ctx, o.limit)
		if err != nil {
			return "", fmt.Errorf("recall recent: %w", err)
		}
		for _, r := range recent {
			contents = append(contents, r.Content)
		}
	}
	if len(contents) == 0 {
		return "", nil
	}

	lines := []string{contextHeader}
	budget := o.maxTokens
	for _, content := range contents {
		line := "- " + content
		cost := len(line) / 4
		if budget-cost < 0 {
			break
		}
		lines = append(lines, line)
		budget -= cost
	}
	// A header with no bullets is useless downstream.
	if len(lines) == 1 {
		return "", nil
	}
	return strings.Join(lines, "\n"), nil
}
