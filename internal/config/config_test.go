package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[llm]
provider = "openai"
model = "gpt-4o-mini"
max_tokens = 512

[pipeline]
similarity_threshold = 0.9
pair_timeout = "10s"

[prompts]
differences = "A: %s B: %s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.Equal(t, 0.9, cfg.Pipeline.SimilarityThreshold)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.PairTimeout.Duration)
	// untouched keys keep defaults
	assert.Equal(t, 16, cfg.Pipeline.BatchSize)
	assert.Equal(t, "para", cfg.Pipeline.TextField)
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.RequestTimeout.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pipeline]\npair_timeout = \"soon\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("EMBEDDING_MODEL", "text-embedding-3-small")
	t.Setenv("SIMILARITY_THRESHOLD", "0.91")
	t.Setenv("PORT", "9090")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 0.91, cfg.Pipeline.SimilarityThreshold)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestApplyEnv_InvalidThreshold(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "high")
	assert.Error(t, Default().ApplyEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold too high", func(c *Config) { c.Pipeline.SimilarityThreshold = 1.5 }},
		{"zero batch", func(c *Config) { c.Pipeline.BatchSize = 0 }},
		{"zero concurrency", func(c *Config) { c.Pipeline.MaxConcurrency = 0 }},
		{"empty text field", func(c *Config) { c.Pipeline.TextField = " " }},
		{"prompt with one slot", func(c *Config) { c.Prompts.Differences = "only %s" }},
		{"unknown store", func(c *Config) { c.Store.Backend = "etcd" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
