package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChunkSize != 800 || cfg.ChunkOverlap != 100 {
		t.Errorf("chunking defaults = %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.DedupThreshold != 0.90 {
		t.Errorf("dedup threshold default = %v", cfg.DedupThreshold)
	}
	if cfg.VectorStore != VectorChromem {
		t.Errorf("vector store default = %q", cfg.VectorStore)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".policyrag.yml")

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.Model = "gpt-4o"
	cfg.VectorStore = VectorQdrant
	cfg.Qdrant.URL = "http://localhost:6333"
	cfg.TopK = 7

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Provider != ProviderOpenAI || loaded.Model != "gpt-4o" {
		t.Errorf("provider/model = %q/%q", loaded.Provider, loaded.Model)
	}
	if loaded.VectorStore != VectorQdrant || loaded.Qdrant.URL != "http://localhost:6333" {
		t.Errorf("vector store = %q url %q", loaded.VectorStore, loaded.Qdrant.URL)
	}
	if loaded.TopK != 7 {
		t.Errorf("top_k = %d", loaded.TopK)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	os.Setenv("POLICYRAG_MODEL", "gemini-2.5-pro")
	os.Setenv("POLICYRAG_TOP_K", "5")
	defer os.Unsetenv("POLICYRAG_MODEL")
	defer os.Unsetenv("POLICYRAG_TOP_K")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q, want env override", cfg.Model)
	}
	if cfg.TopK != 5 {
		t.Errorf("top_k = %d, want env override", cfg.TopK)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty provider", func(c *Config) { c.Provider = "" }, false},
		{"unknown provider", func(c *Config) { c.Provider = "anthropic" }, false},
		{"unknown backend", func(c *Config) { c.VectorStore = "pinecone" }, false},
		{"qdrant without url", func(c *Config) { c.VectorStore = VectorQdrant }, false},
		{"qdrant with url", func(c *Config) { c.VectorStore = VectorQdrant; c.Qdrant.URL = "http://q:6333" }, true},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, false},
		{"overlap >= size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, false},
		{"zero top_k", func(c *Config) { c.TopK = 0 }, false},
		{"threshold above 1", func(c *Config) { c.DedupThreshold = 1.5 }, false},
		{"threshold zero", func(c *Config) { c.DedupThreshold = 0 }, false},
		{"threshold exactly 1", func(c *Config) { c.DedupThreshold = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
