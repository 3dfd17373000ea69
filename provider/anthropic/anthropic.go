// Package anthropic implements text generation over the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentcortex/agentcortex-go/provider"
)

// DefaultModel is used when no model is configured. Compression traffic
// runs on the fast tier.
const DefaultModel = "claude-haiku-4-5"

// Summaries and fact lists are short; cap output accordingly.
const maxGenerateTokens = 512

// Generator produces text with the Anthropic Messages API.
type Generator struct {
	client anthropic.Client
	model  string
}

// NewGenerator creates a generator that reads ANTHROPIC_API_KEY from
// the environment. An empty model selects DefaultModel.
func NewGenerator(model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: anthropic.NewClient(), model: model}
}

// NewGeneratorWithKey creates a generator with an explicit API key.
func NewGeneratorWithKey(apiKey, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: maxGenerateTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %v", provider.ErrGenerationUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
