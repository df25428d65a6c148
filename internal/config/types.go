package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"
	ProviderOllama ProviderType = "ollama"
)

// VectorBackend identifies the vector store implementation.
type VectorBackend string

const (
	VectorChromem VectorBackend = "chromem"
	VectorQdrant  VectorBackend = "qdrant"
)

// Config is the top-level policyrag configuration, corresponding to .policyrag.yml.
type Config struct {
	Provider          ProviderType  `yaml:"provider" koanf:"provider"`
	Model             string        `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType  `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string        `yaml:"embedding_model" koanf:"embedding_model"`
	VectorStore       VectorBackend `yaml:"vector_store" koanf:"vector_store"`
	Qdrant            QdrantConfig  `yaml:"qdrant" koanf:"qdrant"`
	DataDir           string        `yaml:"data_dir" koanf:"data_dir"`
	ChunkSize         int           `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap      int           `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK              int           `yaml:"top_k" koanf:"top_k"`
	DedupThreshold    float64       `yaml:"dedup_threshold" koanf:"dedup_threshold"`
	Include           []string      `yaml:"include" koanf:"include"`
	Exclude           []string      `yaml:"exclude" koanf:"exclude"`
	Server            ServerConfig  `yaml:"server" koanf:"server"`
}

// QdrantConfig holds connection settings for the Qdrant backend.
type QdrantConfig struct {
	URL    string `yaml:"url" koanf:"url"`
	APIKey string `yaml:"api_key" koanf:"api_key"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
