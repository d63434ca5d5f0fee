package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Embedder.Type)
	assert.Equal(t, 256, cfg.Embedder.Dimension)
	assert.Equal(t, "offline", cfg.Completion.Type)
	assert.Equal(t, "memory", cfg.Index.Type)
	assert.Equal(t, 1000, cfg.Segmenter.TargetSize)
	assert.Equal(t, 200, cfg.Segmenter.Overlap)
	assert.Equal(t, 100, cfg.Segmenter.MinSize)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.35, cfg.Retrieval.SimilarityThreshold, 1e-9)
	assert.InDelta(t, 0.5, cfg.Retrieval.ConfidenceThreshold, 1e-9)
	assert.True(t, cfg.Retrieval.TopicGuardEnabled())
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: openai
retrieval:
  top_k: 3
  topic_guard: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.EmbeddingModel)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)

	// completion type follows the embedder when unset
	assert.Equal(t, "openai", cfg.Completion.Type)
	assert.Equal(t, "gpt-4o-mini", cfg.Completion.Model)

	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.35, cfg.Retrieval.SimilarityThreshold, 1e-9)
	assert.False(t, cfg.Retrieval.TopicGuardEnabled())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	original := defaultConfig()
	original.Retrieval.TopK = 7
	guard := false
	original.Retrieval.TopicGuard = &guard

	require.NoError(t, Save(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Retrieval.TopK)
	assert.False(t, loaded.Retrieval.TopicGuardEnabled())
	assert.Equal(t, original.Segmenter, loaded.Segmenter)
}

func TestTopicGuardEnabled(t *testing.T) {
	var rc RetrievalConfig
	assert.True(t, rc.TopicGuardEnabled(), "unset means on")

	on := true
	rc.TopicGuard = &on
	assert.True(t, rc.TopicGuardEnabled())

	off := false
	rc.TopicGuard = &off
	assert.False(t, rc.TopicGuardEnabled())
}
