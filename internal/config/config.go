// ABOUTME: Centralized configuration for the translator CLI
// ABOUTME: Loads from environment variables (optionally seeded by .env files) with validation and defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for a translation run
type Config struct {
	Env string

	// OpenAI settings
	OpenAIKey  string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Pipeline settings
	MaxTokens        int
	FileConcurrency  int
	ChunkConcurrency int
	MaxChunkFailures int

	// Output settings
	OutputDir string
	Template  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env:              os.Getenv("APP_ENV"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		BaseURL:          os.Getenv("OPENAI_BASE_URL"),
		Model:            getEnv("TRANSLATE_MODEL", "gpt-3.5-turbo"),
		Timeout:          getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
		MaxRetries:       getEnvInt("OPENAI_MAX_RETRIES", 0),
		RetryDelay:       getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		MaxTokens:        getEnvInt("TRANSLATE_MAX_TOKENS", 2000),
		FileConcurrency:  getEnvInt("MAX_CONCURRENCY_FILES", 5),
		ChunkConcurrency: getEnvInt("MAX_CONCURRENCY_CHUNKS", 5),
		MaxChunkFailures: getEnvInt("TRANSLATE_MAX_CHUNK_FAILURES", 0),
		OutputDir:        getEnv("TRANSLATE_OUTPUT_DIR", DefaultOutputDir()),
		Template:         os.Getenv("TRANSLATE_TEMPLATE"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("TRANSLATE_MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.FileConcurrency < 1 || c.FileConcurrency > 100 {
		return fmt.Errorf("MAX_CONCURRENCY_FILES must be 1-100, got %d", c.FileConcurrency)
	}
	if c.ChunkConcurrency < 1 || c.ChunkConcurrency > 100 {
		return fmt.Errorf("MAX_CONCURRENCY_CHUNKS must be 1-100, got %d", c.ChunkConcurrency)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT must be positive, got %v", c.Timeout)
	}
	return nil
}

// RequireAPIKey fails when no OpenAI key is configured
func (c *Config) RequireAPIKey() error {
	if c.OpenAIKey == "" {
		return errors.New("OPENAI_API_KEY environment variable not set")
	}
	return nil
}

// DefaultOutputDir follows XDG: $XDG_DATA_HOME/mdtranslate/sessions
func DefaultOutputDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".mdtranslate", "sessions")
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "mdtranslate", "sessions")
}

// EnvFiles lists the dotenv cascade for env, most specific first.
// .env.local is skipped in the test environment so runs stay reproducible.
func EnvFiles(env string) []string {
	var files []string
	if env != "" {
		files = append(files, ".env."+env+".local")
	}
	if env != "test" {
		files = append(files, ".env.local")
	}
	if env != "" {
		files = append(files, ".env."+env)
	}
	return append(files, ".env")
}

// LoadEnvFiles loads the cascade found in dir. Variables already set win,
// so earlier (more specific) files override later ones. Returns the files loaded.
func LoadEnvFiles(dir, env string) ([]string, error) {
	var loaded []string
	for _, name := range EnvFiles(env) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
