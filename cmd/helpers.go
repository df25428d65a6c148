package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/policyrag/internal/config"
	"github.com/ziadkadry99/policyrag/internal/embeddings"
	"github.com/ziadkadry99/policyrag/internal/keywords"
	"github.com/ziadkadry99/policyrag/internal/llm"
	"github.com/ziadkadry99/policyrag/internal/rag"
	"github.com/ziadkadry99/policyrag/internal/session"
	"github.com/ziadkadry99/policyrag/internal/vectorstore"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `policyrag init` to create a config file", err)
	}
	return cfg, nil
}

// createProviderFromConfig creates an LLM provider based on config settings.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, ""), nil
	default:
		// Google has no embeddings endpoint here; OpenAI embeddings serve
		// every cloud provider.
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required (used for embeddings when provider is %s)", provider)
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	}
}

// createStoreFromConfig creates the configured vector store backend and, for
// embedded backends, restores any persisted state from the data directory.
func createStoreFromConfig(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder) (vectorstore.Store, error) {
	switch cfg.VectorStore {
	case config.VectorQdrant:
		return vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			URL:    cfg.Qdrant.URL,
			APIKey: cfg.Qdrant.APIKey,
		}, embedder), nil
	default:
		store := vectorstore.NewChromemStore(embedder)
		dir := vectorDir(cfg)
		if err := store.Load(ctx, dir); err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "No persisted vector store at %s: %v\n", dir, err)
			}
		}
		return store, nil
	}
}

// buildService assembles the full pipeline from config. The returned store
// is also handed back so commands can persist it after writes.
func buildService(ctx context.Context, cfg *config.Config) (*rag.Service, vectorstore.Store, error) {
	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating llm provider: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := createStoreFromConfig(ctx, cfg, embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("creating vector store: %w", err)
	}

	kwStore := keywords.NewFileStore(filepath.Join(cfg.DataDir, "keywords"))

	return rag.New(provider, embedder, store, kwStore, cfg), store, nil
}

// openSessions opens the session database under the data directory.
func openSessions(cfg *config.Config) (*session.DB, error) {
	return session.Open(filepath.Join(cfg.DataDir, "sessions.db"))
}

func vectorDir(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "vectordb")
}
