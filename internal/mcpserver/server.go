// Package mcpserver exposes a MemoryStore over the Model Context
// Protocol so MCP-capable coding assistants (Claude Code, Cursor) can
// remember and recall knowledge about a codebase across sessions. The
// server speaks stdio and registers five tools: remember, recall,
// get_context, memory_stats, and clear_memory.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	agentcortex "github.com/agentcortex/agentcortex-go"
)

const rememberDesc = `Store a fact, decision, preference, or insight in persistent memory.

Call this proactively when you discover something important about the
codebase that future sessions should know. Good candidates: architectural
decisions and why they were made, user coding preferences and style rules,
known bugs or fragile areas, how a tricky problem was solved, key files
and what they own.

Use importance 8-10 for security issues, core patterns, and breaking
constraints. Use 1-3 for minor style preferences.`

const recallDesc = `Retrieve memories relevant to a query using semantic search.

Call this before starting work on any file or feature to surface relevant
past context for that area of the codebase: known issues, prior decisions,
user preferences. The query is natural language and matched semantically,
not exactly.`

const getContextDesc = `Get a formatted block of relevant memories to guide your current task.

Call this at the START of every session or when switching to a new task.
Provide a brief description of what you are about to work on and the most
relevant memories come back as a pre-formatted context block ready to
inject into your reasoning.`

const memoryStatsDesc = `Show how many memories are stored across each tier.

Use this to get a quick overview of what is stored for the current
project, or to verify that remember() calls are persisting correctly.`

const clearMemoryDesc = `Clear stored memories. WARNING: this is permanent and cannot be undone.

Only call this if explicitly asked by the user, or to reset a corrupt
state.`

type rememberInput struct {
	Content    string `json:"content" jsonschema:"the fact or insight to remember in plain English"`
	Importance int    `json:"importance,omitempty" jsonschema:"how critical this memory is from 1 to 10 where 10 is critical (default 5)"`
}

type recallInput struct {
	Query string `json:"query" jsonschema:"what to search for in natural language"`
	N     int    `json:"n,omitempty" jsonschema:"max number of memories to return (default 5)"`
}

type contextInput struct {
	Query     string `json:"query,omitempty" jsonschema:"what you are about to work on (optional but recommended)"`
	MaxTokens int    `json:"max_tokens,omitempty" jsonschema:"max token budget for the context block (default 500)"`
}

type statsInput struct{}

type clearInput struct {
	Tiers []string `json:"tiers,omitempty" jsonschema:"tiers to clear (working episodic semantic) or omit to clear all"`
}

// New builds an MCP server with the five memory tools registered
// against store. The caller owns the store and its lifetime.
func New(store *agentcortex.MemoryStore, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "agentcortex", Version: version}, nil)

	mcp.AddTool(srv, &mcp.Tool{Name: "remember", Description: rememberDesc}, rememberHandler(store))
	mcp.AddTool(srv, &mcp.Tool{Name: "recall", Description: recallDesc}, recallHandler(store))
	mcp.AddTool(srv, &mcp.Tool{Name: "get_context", Description: getContextDesc}, contextHandler(store))
	mcp.AddTool(srv, &mcp.Tool{Name: "memory_stats", Description: memoryStatsDesc}, statsHandler(store))
	mcp.AddTool(srv, &mcp.Tool{Name: "clear_memory", Description: clearMemoryDesc}, clearHandler(store))

	return srv
}

// Serve runs the server over stdio until the client disconnects or ctx
// is canceled.
func Serve(ctx context.Context, store *agentcortex.MemoryStore, version string) error {
	slog.Info("mcp server starting", "agent_id", store.AgentID())
	return New(store, version).Run(ctx, &mcp.StdioTransport{})
}

func rememberHandler(store *agentcortex.MemoryStore) func(context.Context, *mcp.CallToolRequest, rememberInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in rememberInput) (*mcp.CallToolResult, any, error) {
		importance := in.Importance
		if importance == 0 {
			importance = agentcortex.DefaultImportance
		}
		if err := store.Remember(ctx, in.Content, agentcortex.WithImportance(importance)); err != nil {
			return nil, nil, err
		}
		return textResult(fmt.Sprintf("Stored (importance=%d/10): %s", importance, preview(in.Content))), nil, nil
	}
}

func recallHandler(store *agentcortex.MemoryStore) func(context.Context, *mcp.CallToolRequest, recallInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in recallInput) (*mcp.CallToolResult, any, error) {
		n := in.N
		if n <= 0 {
			n = 5
		}
		memories, err := store.Recall(ctx, in.Query, agentcortex.WithLimit(n))
		if err != nil {
			return nil, nil, err
		}
		if len(memories) == 0 {
			return textResult("No relevant memories found."), nil, nil
		}
		lines := make([]string, 0, len(memories))
		for i, m := range memories {
			lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, m.Source, m.Content))
		}
		return textResult(strings.Join(lines, "\n")), nil, nil
	}
}

func contextHandler(store *agentcortex.MemoryStore) func(context.Context, *mcp.CallToolRequest, contextInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in contextInput) (*mcp.CallToolResult, any, error) {
		opts := []agentcortex.ContextOption{agentcortex.WithMaxTokens(in.MaxTokens)}
		if in.Query != "" {
			opts = append(opts, agentcortex.WithQuery(in.Query))
		}
		block, err := store.GetContext(ctx, opts...)
		if err != nil {
			return nil, nil, err
		}
		if block == "" {
			return textResult("No memories stored yet. Use remember() to start building codebase memory."), nil, nil
		}
		return textResult(block), nil, nil
	}
}

func statsHandler(store *agentcortex.MemoryStore) func(context.Context, *mcp.CallToolRequest, statsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in statsInput) (*mcp.CallToolResult, any, error) {
		st, err := store.Stats(ctx)
		if err != nil {
			return nil, nil, err
		}
		total := st.Episodic.Count + st.Semantic.Count
		lines := []string{
			fmt.Sprintf("Agent ID       : %s", st.AgentID),
			fmt.Sprintf("Working memory : %d messages", st.Working.MessageCount),
			fmt.Sprintf("Episodic memory: %d entries", st.Episodic.Count),
			fmt.Sprintf("Semantic memory: %d entries", st.Semantic.Count),
			fmt.Sprintf("Total stored   : %d memories", total),
		}
		return textResult(strings.Join(lines, "\n")), nil, nil
	}
}

func clearHandler(store *agentcortex.MemoryStore) func(context.Context, *mcp.CallToolRequest, clearInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in clearInput) (*mcp.CallToolResult, any, error) {
		if len(in.Tiers) == 0 {
			if err := store.Clear(ctx); err != nil {
				return nil, nil, err
			}
			return textResult("Cleared all memory tiers (working, episodic, semantic)."), nil, nil
		}
		tiers := make([]agentcortex.Tier, 0, len(in.Tiers))
		for _, t := range in.Tiers {
			tiers = append(tiers, agentcortex.Tier(t))
		}
		if err := store.ClearTiers(ctx, tiers...); err != nil {
			return nil, nil, err
		}
		return textResult("Cleared memory tiers: " + strings.Join(in.Tiers, ", ")), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// preview shortens content for the remember confirmation line.
func preview(content string) string {
	const max = 80
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
