// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by collaborators that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "modelcard/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ModelProvider identifies the transport used to reach a language model.
type ModelProvider string

const (
	ProviderClaude ModelProvider = "claude"
	ProviderGemini ModelProvider = "gemini"
)

// ModelTier configures one language model in the ordered fallback chain.
// The first tier is the primary model; later tiers are reduced-capability
// fallbacks tried only when an earlier tier reports a quota error.
type ModelTier struct {
	Provider ModelProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the provider model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key. Empty falls back to .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens bounds the response length (default 1024).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// EmbeddingConfig selects the embedding model used by the context index.
// An empty Provider disables embeddings and the index ranks with FTS5 only.
type EmbeddingConfig struct {
	Provider ModelProvider `json:"provider" yaml:"provider" mapstructure:"provider"`
	Model    string        `json:"model" yaml:"model" mapstructure:"model"`
	APIKey   string        `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BatchSize is the number of passages embedded per request (default 64).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`
}

// IndexConfig holds settings for the persisted context index.
type IndexConfig struct {
	// CacheDir is the directory holding persisted indexes (default "data/index_cache").
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`

	// Name is the stable index name. Empty derives it from the capability name.
	Name string `json:"name" yaml:"name" mapstructure:"name"`
}

// IngestConfig holds settings for the document source collaborators.
type IngestConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ChunkSize is the maximum passage length in characters (default 1000).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size" mapstructure:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive passages (default 150).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap" mapstructure:"chunk_overlap"`

	// MaxDepth bounds the documentation crawl depth (default 3).
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`

	// Extensions lists the repository file extensions that are ingested.
	Extensions []string `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// CloneDir is the directory repositories are cloned into (default "data/repos").
	CloneDir string `json:"clone_dir" yaml:"clone_dir" mapstructure:"clone_dir"`
}

// ExtractionConfig holds settings for the field extraction stage.
type ExtractionConfig struct {
	// K is the number of passages retrieved per field (default 7).
	K int `json:"k" yaml:"k" mapstructure:"k"`
}

// EnrichConfig holds settings for the publication enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// MaxResults is the number of search hits kept per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// PerResultChars truncates each search hit (default 2000).
	PerResultChars int `json:"per_result_chars" yaml:"per_result_chars" mapstructure:"per_result_chars"`

	// TotalChars bounds the combined search context (default 16000).
	TotalChars int `json:"total_chars" yaml:"total_chars" mapstructure:"total_chars"`

	// Email is sent to OpenAlex to join the polite pool.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// SemanticScholarAPIKey enables the Semantic Scholar backend when set.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`
}

// Config groups all settings for one pipeline run.
type Config struct {
	Models     []ModelTier      `json:"models" yaml:"models" mapstructure:"models"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Index      IndexConfig      `json:"index" yaml:"index" mapstructure:"index"`
	Ingest     IngestConfig     `json:"ingest" yaml:"ingest" mapstructure:"ingest"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Enrich     EnrichConfig     `json:"enrich" yaml:"enrich" mapstructure:"enrich"`
	LogLevel   string           `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// DefaultExtensions is the repository file extension set ingested when
// IngestConfig.Extensions is empty.
var DefaultExtensions = []string{
	".txt", ".md", ".rst", ".py", ".png", ".jpg", ".svg", ".cff",
	".json", ".yaml", ".sh", ".cfg", ".config", ".ipynb",
}

// DefaultConfig returns the configuration used when no config file is present.
func DefaultConfig() Config {
	return Config{
		Models: []ModelTier{
			{Provider: ProviderClaude, Model: "claude-sonnet-4-5-20250929", MaxTokens: 1024},
			{Provider: ProviderClaude, Model: "claude-haiku-4-5-20251001", MaxTokens: 1024},
		},
		Index: IndexConfig{CacheDir: "data/index_cache"},
		Ingest: IngestConfig{
			HTTPConfig:   HTTPConfig{Timeout: 30 * time.Second, UserAgent: "modelcard/0.1"},
			ChunkSize:    1000,
			ChunkOverlap: 150,
			MaxDepth:     3,
			Extensions:   DefaultExtensions,
			CloneDir:     "data/repos",
		},
		Extraction: ExtractionConfig{K: 7},
		Enrich: EnrichConfig{
			HTTPConfig:     HTTPConfig{Timeout: 30 * time.Second, UserAgent: "modelcard/0.1"},
			Enabled:        true,
			MaxResults:     5,
			PerResultChars: 2000,
			TotalChars:     16000,
		},
		LogLevel: "info",
	}
}
