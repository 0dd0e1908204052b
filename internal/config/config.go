package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ChatModelConfig points at an OpenAI-compatible chat completions endpoint.
type ChatModelConfig struct {
	URL         string  `json:"url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// EmbeddingConfig points at a feature-extraction endpoint.
type EmbeddingConfig struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

type Config struct {
	Server struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Subpath   string `json:"subpath"`
		JWTSecret string `json:"jwtSecret"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Chat      ChatModelConfig `json:"chat"`
	Embedding EmbeddingConfig `json:"embedding"`
	Backfill  struct {
		Enabled       bool `json:"enabled"`
		ScheduleHours int  `json:"schedule_hours"`
	} `json:"backfill"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		if c.Chat.URL == "" {
			cfgErr = errors.New("chat.url must be set in config")
			return
		}
		if c.Embedding.URL == "" {
			cfgErr = errors.New("embedding.url must be set in config")
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}

// ChatAPIKey returns the bearer token for the chat endpoint, empty when the
// endpoint needs none (local llama.cpp style servers).
func ChatAPIKey() string {
	return os.Getenv("GROQ_API_KEY")
}

// EmbeddingAPIKey returns the bearer token for the embedding endpoint.
func EmbeddingAPIKey() string {
	return os.Getenv("HUGGINGFACE_API_KEY")
}
