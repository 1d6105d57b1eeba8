package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that decodes from TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

type EmbeddingConfig struct {
	Provider        string `toml:"provider"`
	Model           string `toml:"model"`
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	PassagePrefix   string `toml:"passage_prefix"`
	ParallelBatches int    `toml:"parallel_batches"`
}

type PipelineConfig struct {
	SimilarityThreshold float64  `toml:"similarity_threshold"`
	BatchSize           int      `toml:"batch_size"`
	TextField           string   `toml:"text_field"`
	PositionField       string   `toml:"position_field"`
	MaxConcurrency      int      `toml:"max_concurrency"`
	PairTimeout         Duration `toml:"pair_timeout"`
	RequestTimeout      Duration `toml:"request_timeout"`
}

type Prompts struct {
	Differences string `toml:"differences"`
}

type StoreConfig struct {
	Backend   string   `toml:"backend"`
	ResultTTL Duration `toml:"result_ttl"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Prompts   Prompts         `toml:"prompts"`
	Store     StoreConfig     `toml:"store"`
	Redis     RedisConfig     `toml:"redis"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Log       LogConfig       `toml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		LLM: LLMConfig{
			Provider:  "ollama",
			Model:     "granite3.3:8b",
			BaseURL:   "http://localhost:11434",
			MaxTokens: 256,
		},
		Embedding: EmbeddingConfig{
			Provider:        "ollama",
			Model:           "jeffh/intfloat-multilingual-e5-large:f16",
			BaseURL:         "http://localhost:11434",
			PassagePrefix:   "passage: ",
			ParallelBatches: 1,
		},
		Pipeline: PipelineConfig{
			SimilarityThreshold: 0.94,
			BatchSize:           16,
			TextField:           "para",
			PositionField:       "para_number",
			MaxConcurrency:      4,
			PairTimeout:         Duration{30 * time.Second},
			RequestTimeout:      Duration{5 * time.Minute},
		},
		Store: StoreConfig{
			Backend:   "memory",
			ResultTTL: Duration{24 * time.Hour},
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "concord:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a TOML file on top of Default(). Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when they are set.
func (c *Config) ApplyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	setString("LLM_PROVIDER", &c.LLM.Provider)
	setString("LLM_MODEL", &c.LLM.Model)
	setString("LLM_API_KEY", &c.LLM.APIKey)
	setString("LLM_BASE_URL", &c.LLM.BaseURL)
	setString("EMBEDDING_PROVIDER", &c.Embedding.Provider)
	setString("EMBEDDING_MODEL", &c.Embedding.Model)
	setString("EMBEDDING_API_KEY", &c.Embedding.APIKey)
	setString("EMBEDDING_BASE_URL", &c.Embedding.BaseURL)
	setString("STORE_BACKEND", &c.Store.Backend)
	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setString("MEMGRAPH_URI", &c.Memgraph.URI)
	setString("MEMGRAPH_USER", &c.Memgraph.User)
	setString("MEMGRAPH_PASSWORD", &c.Memgraph.Password)
	setString("LOG_LEVEL", &c.Log.Level)

	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid SIMILARITY_THRESHOLD %q: %w", v, err)
		}
		c.Pipeline.SimilarityThreshold = f
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.SimilarityThreshold < -1 || p.SimilarityThreshold > 1 {
		return fmt.Errorf("pipeline.similarity_threshold must be within [-1, 1], got %v", p.SimilarityThreshold)
	}
	if p.BatchSize <= 0 {
		return fmt.Errorf("pipeline.batch_size must be positive, got %d", p.BatchSize)
	}
	if p.MaxConcurrency <= 0 {
		return fmt.Errorf("pipeline.max_concurrency must be positive, got %d", p.MaxConcurrency)
	}
	if strings.TrimSpace(p.TextField) == "" {
		return fmt.Errorf("pipeline.text_field must not be empty")
	}
	if c.Prompts.Differences != "" && strings.Count(c.Prompts.Differences, "%s") != 2 {
		return fmt.Errorf("prompts.differences must contain exactly two %%s placeholders")
	}
	switch strings.ToLower(c.Store.Backend) {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}
	return nil
}
