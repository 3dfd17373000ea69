// Package working implements the in-context conversation window: the
// bounded, session-scoped message buffer that signals when its contents
// should be compressed into the durable tiers.
package working

import (
	"math"
	"strings"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// NormalizeRole maps external role names onto the canonical set. Agent
// frameworks spell the same author several ways ("human" for user
// turns, "ai" or "model" for assistant turns); unrecognized roles are
// treated as user turns.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user", "human", "humanmessage":
		return RoleUser
	case "assistant", "ai", "aimessage", "model":
		return RoleAssistant
	case "system", "systemmessage":
		return RoleSystem
	default:
		return RoleUser
	}
}

// Message is one conversation turn. TokenEstimate is derived from the
// content length (roughly 4 characters per token, minimum 1) unless
// supplied explicitly. Messages are immutable once created.
type Message struct {
	Role          Role
	Content       string
	TokenEstimate int
}

// NewMessage creates a message with a derived token estimate.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, TokenEstimate: estimateTokens(content)}
}

func estimateTokens(content string) int {
	est := (len(content) + 3) / 4
	if est < 1 {
		est = 1
	}
	return est
}

// Stats is a snapshot of window usage.
type Stats struct {
	MessageCount     int     `json:"message_count"`
	TokenCount       int     `json:"token_count"`
	TokenLimit       int     `json:"token_limit"`
	Utilization      float64 `json:"utilization"`
	NeedsCompression bool    `json:"needs_compression"`
}

// Window is the active in-context conversation buffer. It tracks token
// usage and reports when the oldest messages should be summarized and
// moved out. A Window has a single owner; it is not safe for concurrent
// use.
type Window struct {
	maxTokens int
	threshold float64

	msgs     []Message
	tokens   int
	injected string
}

// NewWindow creates a window that wants compression once token usage
// reaches threshold*maxTokens. Non-positive arguments select the
// defaults (4096 tokens, 0.8).
func NewWindow(maxTokens int, threshold float64) *Window {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	if threshold <= 0 {
		threshold = 0.8
	}
	return &Window{maxTokens: maxTokens, threshold: threshold}
}

// Add appends a conversation turn.
func (w *Window) Add(role Role, content string) {
	w.AddMessage(NewMessage(role, content))
}

// AddMessage appends a message, deriving the token estimate when it is
// not supplied.
func (w *Window) AddMessage(msg Message) {
	if msg.TokenEstimate <= 0 {
		msg.TokenEstimate = estimateTokens(msg.Content)
	}
	w.msgs = append(w.msgs, msg)
	w.tokens += msg.TokenEstimate
}

// Messages returns a copy of the current window contents in order.
func (w *Window) Messages() []Message {
	out := make([]Message, len(w.msgs))
	copy(out, w.msgs)
	return out
}

// TokenCount is the sum of all message token estimates.
func (w *Window) TokenCount() int { return w.tokens }

// NeedsCompression reports whether token usage has reached the
// compression threshold.
func (w *Window) NeedsCompression() bool {
	return w.tokens >= int(float64(w.maxTokens)*w.threshold)
}

// CompressionTargets returns the oldest half of the non-system messages
// (rounded up, at least one when any exist) without removing them.
// Repeated calls before any mutation return the same set; callers evict
// with PopOldest only after compression succeeds, so a failed attempt
// leaves the window intact.
func (w *Window) CompressionTargets() []Message {
	nonSystem := w.nonSystem()
	if len(nonSystem) == 0 {
		return nil
	}
	half := (len(nonSystem) + 1) / 2
	out := make([]Message, half)
	copy(out, nonSystem[:half])
	return out
}

// PopOldest removes and returns the n oldest non-system messages in
// original order. System messages and newer messages are untouched. If
// n exceeds the available non-system messages, all of them are removed.
func (w *Window) PopOldest(n int) []Message {
	if n <= 0 {
		return nil
	}
	var evicted []Message
	kept := w.msgs[:0]
	for _, m := range w.msgs {
		if m.Role != RoleSystem && len(evicted) < n {
			evicted = append(evicted, m)
			w.tokens -= m.TokenEstimate
			continue
		}
		kept = append(kept, m)
	}
	w.msgs = kept
	return evicted
}

// InjectContext sets the retrieved memory context string to be carried
// alongside the window, typically prepended to a system prompt.
func (w *Window) InjectContext(context string) {
	w.injected = context
}

// SystemContext returns the injected memory context string.
func (w *Window) SystemContext() string { return w.injected }

// Clear empties the window and drops any injected context.
func (w *Window) Clear() {
	w.msgs = nil
	w.tokens = 0
	w.injected = ""
}

// Stats returns a usage snapshot.
func (w *Window) Stats() Stats {
	return Stats{
		MessageCount:     len(w.msgs),
		TokenCount:       w.tokens,
		TokenLimit:       w.maxTokens,
		Utilization:      math.Round(float64(w.tokens)/float64(w.maxTokens)*100) / 100,
		NeedsCompression: w.NeedsCompression(),
	}
}

func (w *Window) nonSystem() []Message {
	out := make([]Message, 0, len(w.msgs))
	for _, m := range w.msgs {
		if m.Role != RoleSystem {
			out = append(out, m)
		}
	}
	return out
}
