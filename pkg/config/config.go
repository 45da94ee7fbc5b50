// Package config loads application configuration from defaults, an optional
// YAML file, and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration.
type Config struct {
	// OpenAI settings. Key and base URL come from the environment only and
	// are never read from the YAML file.
	APIKey      string  `yaml:"-"`
	BaseURL     string  `yaml:"-"`
	Model       string  `yaml:"model" default:"gpt-4"`
	Temperature float64 `yaml:"temperature" default:"0.7"`

	// Retrieval settings.
	EmbeddingModel string `yaml:"embedding_model" default:"text-embedding-3-small"`
	DocumentPath   string `yaml:"document" default:"taxonomy_faqs_cleaned.md"`
	TopK           int    `yaml:"top_k" default:"3"`

	// Qdrant connection (gRPC).
	QdrantHost string `yaml:"qdrant_host" default:"localhost"`
	QdrantPort int    `yaml:"qdrant_port" default:"6334"`

	// Serving.
	ListenAddr     string        `yaml:"listen_addr" default:"127.0.0.1:7860"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"15s"`
	MaxConcurrent  int           `yaml:"max_concurrent" default:"10"`

	// Embedding cache. Empty disables the cache.
	CachePath string `yaml:"cache_path" default:"faqrag-cache.db"`

	Verbose bool `yaml:"verbose"`
}

// Default returns the baseline configuration with struct-tag defaults applied.
func Default() Config {
	var cfg Config
	defaults.MustSet(&cfg)
	return cfg
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Optional file; fall through to env and defaults.
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return Normalize(cfg), nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) error {
	cfg.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.BaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		cfg.Model = v
	}
	if v, ok := os.LookupEnv("FAQRAG_DOCUMENT"); ok {
		cfg.DocumentPath = v
	}
	if v, ok := os.LookupEnv("FAQRAG_QDRANT_HOST"); ok {
		cfg.QdrantHost = v
	}
	if v, ok := os.LookupEnv("FAQRAG_QDRANT_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FAQRAG_QDRANT_PORT has invalid value %q: %w", v, err)
		}
		cfg.QdrantPort = port
	}
	if v, ok := os.LookupEnv("FAQRAG_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("FAQRAG_REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FAQRAG_REQUEST_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv("FAQRAG_CACHE_PATH"); ok {
		cfg.CachePath = v
	}
	return nil
}

// Normalize trims string fields and bounds numeric ones.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.EmbeddingModel = strings.TrimSpace(cfg.EmbeddingModel)
	cfg.DocumentPath = strings.TrimSpace(cfg.DocumentPath)
	cfg.QdrantHost = strings.TrimSpace(cfg.QdrantHost)
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.CachePath = strings.TrimSpace(cfg.CachePath)

	if cfg.TopK <= 0 {
		cfg.TopK = 1
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	return cfg
}

// Validate checks the fields every OpenAI-backed command needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	if c.Model == "" {
		return errors.New("model is not set")
	}
	if c.EmbeddingModel == "" {
		return errors.New("embedding model is not set")
	}
	if c.DocumentPath == "" {
		return errors.New("document path is not set")
	}
	return nil
}
