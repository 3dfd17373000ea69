// Package compress condenses conversation transcripts into short
// summaries and durable facts via a text generator.
package compress

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentcortex/agentcortex-go/provider"
	"github.com/agentcortex/agentcortex-go/working"
)

const summaryPrompt = `You are a memory compression system for an AI agent.
Your job is to summarize the following conversation excerpt into a compact, factual summary that preserves:
- Key facts stated by the user (name, preferences, goals, constraints)
- Important decisions made
- Unresolved questions or tasks
- Context needed to continue the conversation coherently

Be concise. Output only the summary, no preamble.

Conversation to compress:
%s`

const factPrompt = `Extract atomic facts from this conversation that are worth remembering long-term.
Format: one fact per line, starting with a dash.
Only include facts that would be useful in future conversations (not transient context).
Examples of good facts:
- User's name is Alice
- User prefers Python over JavaScript
- User is building a web scraper for real estate data
- User has a deadline of March 15

Conversation:
%s`

// Compressor drives summarization and fact extraction over batches of
// working-memory messages.
type Compressor struct {
	gen provider.Generator
}

// New returns a Compressor backed by gen. A nil generator is allowed;
// all operations then fail with provider.ErrGenerationUnavailable.
func New(gen provider.Generator) *Compressor {
	return &Compressor{gen: gen}
}

// Available reports whether a generator is configured.
func (c *Compressor) Available() bool {
	return c.gen != nil
}

// Summarize produces a compact factual summary of msgs. An empty
// message batch yields an empty summary without calling the generator.
func (c *Compressor) Summarize(ctx context.Context, msgs []working.Message) (string, error) {
	if len(msgs) == 0 {
		return "", nil
	}
	if c.gen == nil {
		return "", fmt.Errorf("%w: no generator configured", provider.ErrGenerationUnavailable)
	}
	out, err := c.gen.Generate(ctx, fmt.Sprintf(summaryPrompt, renderConversation(msgs)))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ExtractFacts pulls atomic, long-term facts out of msgs. Facts come
// back one per line from the generator, bullet-prefixed; anything else
// is dropped.
func (c *Compressor) ExtractFacts(ctx context.Context, msgs []working.Message) ([]string, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	if c.gen == nil {
		return nil, fmt.Errorf("%w: no generator configured", provider.ErrGenerationUnavailable)
	}
	out, err := c.gen.Generate(ctx, fmt.Sprintf(factPrompt, renderConversation(msgs)))
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}
	return parseFacts(out), nil
}

// renderConversation flattens messages into "ROLE: content" lines for
// prompt interpolation.
func renderConversation(msgs []working.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToUpper(string(m.Role)))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

// parseFacts keeps bullet-prefixed lines and strips the bullet. Models
// vary between "-", "*", and "•" bullets; all three count. Blank
// bullets are skipped.
func parseFacts(out string) []string {
	var facts []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "•") {
			continue
		}
		fact := strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if fact == "" {
			continue
		}
		facts = append(facts, fact)
	}
	return facts
}
