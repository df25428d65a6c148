package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// defaultModels maps a provider to its default chat model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGoogle: "gemini-2.0-flash",
	ProviderOllama: "llama3.1",
}

// APIKeyEnvVar returns the environment variable a provider reads its
// credentials from, or "" for providers that need none.
func APIKeyEnvVar(p ProviderType) string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .policyrag.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to policyrag! Let's configure your project.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"google", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = defaultModels[cfg.Provider]

	// 2. Model override.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: cfg.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Embedding provider. Ollama keeps embeddings local; everything else
	// uses OpenAI embeddings.
	if cfg.Provider == ProviderOllama {
		cfg.EmbeddingProvider = ProviderOllama
		cfg.EmbeddingModel = "nomic-embed-text"
	} else {
		cfg.EmbeddingProvider = ProviderOpenAI
		cfg.EmbeddingModel = "text-embedding-3-small"
	}

	// 4. Vector store backend.
	storePrompt := promptui.Select{
		Label: "Select vector store",
		Items: []string{
			"chromem — embedded, zero setup",
			"qdrant  — external server, native filtering",
		},
	}
	storeIdx, _, err := storePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("vector store selection: %w", err)
	}
	if storeIdx == 1 {
		cfg.VectorStore = VectorQdrant
		urlPrompt := promptui.Prompt{
			Label:   "Qdrant URL",
			Default: "http://localhost:6333",
		}
		if cfg.Qdrant.URL, err = urlPrompt.Run(); err != nil {
			return nil, fmt.Errorf("qdrant url: %w", err)
		}
	}

	// 5. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (keyword store, chromem persistence, sessions)",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 6. Include patterns for directory ingestion.
	includePrompt := promptui.Prompt{
		Label:   "Include patterns (comma-separated globs)",
		Default: strings.Join(cfg.Include, ","),
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	cfg.Include = splitAndTrim(includeStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API keys.
	seen := map[string]bool{}
	for _, envVar := range []string{APIKeyEnvVar(cfg.Provider), APIKeyEnvVar(cfg.EmbeddingProvider)} {
		if envVar != "" && !seen[envVar] && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running policyrag.\n", envVar)
		}
		seen[envVar] = true
	}

	configPath := ".policyrag.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
