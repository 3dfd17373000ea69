package cli

import (
	"fmt"
	"os"

	agentcortex "github.com/agentcortex/agentcortex-go"
	"github.com/agentcortex/agentcortex-go/provider"
	"github.com/agentcortex/agentcortex-go/provider/anthropic"
	"github.com/agentcortex/agentcortex-go/provider/ollama"
	"github.com/agentcortex/agentcortex-go/provider/openai"
	"github.com/agentcortex/agentcortex-go/semantic/pgvector"
)

// applyProviders fills cfg's Generator, Embedder, and SemanticBackend
// from environment variables. The generator is skipped for one-shot
// commands, which never compress.
func applyProviders(cfg *agentcortex.Config, withGenerator bool) error {
	emb, err := embedderFromEnv()
	if err != nil {
		return err
	}
	cfg.Embedder = emb

	if withGenerator {
		gen, err := generatorFromEnv()
		if err != nil {
			return err
		}
		cfg.Generator = gen
	}

	if emb != nil {
		if dsn := os.Getenv("AGENTCORTEX_PG_DSN"); dsn != "" {
			backend, err := pgvector.New(dsn, emb.Dimensions())
			if err != nil {
				return fmt.Errorf("connect pgvector: %w", err)
			}
			cfg.SemanticBackend = backend
		}
	}
	return nil
}

// embedderFromEnv builds the embedding provider selected by
// AGENTCORTEX_EMBED_PROVIDER, or nil when unset (semantic tier
// disabled). Vectors are cached per process so dedup does not re-embed
// the same text against every comparison batch.
func embedderFromEnv() (provider.Embedder, error) {
	name := os.Getenv("AGENTCORTEX_EMBED_PROVIDER")
	model := os.Getenv("AGENTCORTEX_EMBED_MODEL")

	var inner provider.Embedder
	switch name {
	case "":
		return nil, nil
	case "ollama":
		inner = ollama.NewEmbedder(model)
	case "openai":
		inner = openai.New(openai.Config{
			BaseURL:        os.Getenv("AGENTCORTEX_EMBED_URL"),
			APIKey:         apiKey("OPENAI_API_KEY"),
			EmbeddingModel: model,
		})
	default:
		return nil, fmt.Errorf("unknown embed provider %q", name)
	}
	return provider.NewCachedEmbedder(inner, 0)
}

// generatorFromEnv builds the LLM provider used for working-memory
// compression, selected by AGENTCORTEX_LLM_PROVIDER.
func generatorFromEnv() (provider.Generator, error) {
	name := os.Getenv("AGENTCORTEX_LLM_PROVIDER")
	if name == "" {
		name = "anthropic"
	}
	model := os.Getenv("AGENTCORTEX_LLM_MODEL")

	switch name {
	case "anthropic":
		if key := os.Getenv("AGENTCORTEX_API_KEY"); key != "" {
			return anthropic.NewGeneratorWithKey(key, model), nil
		}
		return anthropic.NewGenerator(model), nil
	case "openai":
		return openai.New(openai.Config{
			APIKey:    apiKey("OPENAI_API_KEY"),
			ChatModel: model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}

// apiKey returns AGENTCORTEX_API_KEY or the provider's native variable.
func apiKey(fallback string) string {
	if key := os.Getenv("AGENTCORTEX_API_KEY"); key != "" {
		return key
	}
	return os.Getenv(fallback)
}
