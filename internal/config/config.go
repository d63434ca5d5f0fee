package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds configuration for the OpenAI-compatible provider.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	EmbeddingModel string `yaml:"embedding_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string        `yaml:"type"` // "local" or "openai"
	Dimension int           `yaml:"dimension,omitempty"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty"`
}

// CompletionConfig configures answer generation.
type CompletionConfig struct {
	Type        string  `yaml:"type"` // "openai" or "offline"
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// QdrantConfig contains connection details for a Qdrant index backend.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the similarity index backend.
type IndexConfig struct {
	Type   string        `yaml:"type"` // "memory" or "qdrant"
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SegmenterConfig configures how documents are split into chunks.
type SegmenterConfig struct {
	TargetSize int `yaml:"target_size"`
	Overlap    int `yaml:"overlap"`
	MinSize    int `yaml:"min_size"`
}

// RetrievalConfig tunes search filtering and confidence scoring.
type RetrievalConfig struct {
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	TopicGuard          *bool   `yaml:"topic_guard,omitempty"`
}

// SessionConfig configures conversation persistence.
type SessionConfig struct {
	Dir string `yaml:"dir"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Completion CompletionConfig `yaml:"completion"`
	Index      IndexConfig      `yaml:"index"`
	Segmenter  SegmenterConfig  `yaml:"segmenter"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Sessions   SessionConfig    `yaml:"sessions"`
}

// TopicGuardEnabled reports the topic guard setting; the guard is on unless
// the config switches it off explicitly.
func (c *RetrievalConfig) TopicGuardEnabled() bool {
	return c.TopicGuard == nil || *c.TopicGuard
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/docchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:   EmbedderConfig{Type: "local", Dimension: 256},
		Completion: CompletionConfig{Type: "offline", Temperature: 0.2, MaxTokens: 1024},
		Index:      IndexConfig{Type: "memory"},
		Segmenter:  SegmenterConfig{TargetSize: 1000, Overlap: 200, MinSize: 100},
		Retrieval:  RetrievalConfig{TopK: 5, SimilarityThreshold: 0.35, ConfidenceThreshold: 0.5},
		Sessions:   SessionConfig{Dir: ""},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "local"
	}
	if cfg.Embedder.Type == "local" && cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 256
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.EmbeddingModel == "" {
			cfg.Embedder.OpenAI.EmbeddingModel = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Completion.Type == "" {
		if cfg.Embedder.Type == "openai" {
			cfg.Completion.Type = "openai"
		} else {
			cfg.Completion.Type = "offline"
		}
	}
	if cfg.Completion.Type == "openai" && cfg.Completion.Model == "" {
		cfg.Completion.Model = "gpt-4o-mini"
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 1024
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Segmenter.TargetSize == 0 {
		cfg.Segmenter.TargetSize = 1000
	}
	if cfg.Segmenter.Overlap == 0 {
		cfg.Segmenter.Overlap = 200
	}
	if cfg.Segmenter.MinSize == 0 {
		cfg.Segmenter.MinSize = 100
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.SimilarityThreshold == 0 {
		cfg.Retrieval.SimilarityThreshold = 0.35
	}
	if cfg.Retrieval.ConfidenceThreshold == 0 {
		cfg.Retrieval.ConfidenceThreshold = 0.5
	}
}
