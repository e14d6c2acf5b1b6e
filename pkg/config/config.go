// Package config loads the service configuration from a YAML file, with
// defaults for anything unset. Secrets (API keys, DSNs with credentials)
// stay in the environment; a .env file is honored when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/barekit/corpus/pkg/store/factory"
)

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connection_string"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	DBName           string `yaml:"db_name"`
	Collection       string `yaml:"collection"`
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Dimension        int    `yaml:"dimension"`
}

// RedisConfig configures the optional embedding cache. An empty URL
// disables caching.
type RedisConfig struct {
	URL     string `yaml:"url"`
	TTLSecs int    `yaml:"ttl_secs"`
}

// Config is the root service configuration.
type Config struct {
	Listen          string      `yaml:"listen"`
	ChunkLimit      int         `yaml:"chunk_limit"`
	ChunkOverlap    int         `yaml:"chunk_overlap"`
	TopK            int         `yaml:"top_k"`
	MaxAnswerTokens int         `yaml:"max_answer_tokens"`
	CallTimeoutSecs int         `yaml:"call_timeout_secs"`
	EmbeddingModel  string      `yaml:"embedding_model"`
	GenerationModel string      `yaml:"generation_model"`
	Store           StoreConfig `yaml:"store"`
	Redis           RedisConfig `yaml:"redis"`
	// Sources are ingested once at startup, before serving.
	Sources []string `yaml:"sources"`
	Debug   bool     `yaml:"debug"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault reads ./corpus.yaml if present, otherwise returns defaults.
func LoadDefault() (*Config, error) {
	return Load("corpus.yaml")
}

// CallTimeout returns the per-call timeout for boundary calls.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSecs) * time.Second
}

// StoreFactoryConfig converts the store section for the factory.
func (c *Config) StoreFactoryConfig() factory.Config {
	return factory.Config{
		Type:             factory.Type(c.Store.Type),
		ConnectionString: c.Store.ConnectionString,
		Username:         c.Store.Username,
		Password:         c.Store.Password,
		DBName:           c.Store.DBName,
		Collection:       c.Store.Collection,
		Host:             c.Store.Host,
		Port:             c.Store.Port,
		Dimension:        c.Store.Dimension,
	}
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Listen == "" {
		cfg.Listen = ":3000"
	}
	if cfg.ChunkLimit == 0 {
		cfg.ChunkLimit = 512
	}
	if cfg.TopK == 0 {
		cfg.TopK = 5
	}
	if cfg.MaxAnswerTokens == 0 {
		cfg.MaxAnswerTokens = 200
	}
	if cfg.CallTimeoutSecs == 0 {
		cfg.CallTimeoutSecs = 60
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
}
