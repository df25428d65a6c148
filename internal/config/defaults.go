package config

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-2.0-flash",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		VectorStore:       VectorChromem,
		DataDir:           ".policyrag",
		ChunkSize:         800,
		ChunkOverlap:      100,
		TopK:              3,
		DedupThreshold:    0.90,
		Include:           []string{"**/*.txt", "**/*.md"},
		Exclude:           []string{"**/node_modules/**", "**/.git/**"},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}
