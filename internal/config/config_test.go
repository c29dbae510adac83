// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing, validation and the dotenv cascade
package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

var keys = []string{
	"APP_ENV", "OPENAI_API_KEY", "OPENAI_BASE_URL", "TRANSLATE_MODEL", "OPENAI_TIMEOUT",
	"OPENAI_MAX_RETRIES", "OPENAI_RETRY_DELAY", "TRANSLATE_MAX_TOKENS", "MAX_CONCURRENCY_FILES",
	"MAX_CONCURRENCY_CHUNKS", "TRANSLATE_MAX_CHUNK_FAILURES", "TRANSLATE_OUTPUT_DIR",
	"TRANSLATE_TEMPLATE", "XDG_DATA_HOME",
}

// clearEnv unsets every key Load reads and restores them after the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %s, want gpt-3.5-turbo", cfg.Model)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.MaxTokens != 2000 {
		t.Errorf("MaxTokens = %d, want 2000", cfg.MaxTokens)
	}
	if cfg.FileConcurrency != 5 || cfg.ChunkConcurrency != 5 {
		t.Errorf("concurrency = %d/%d, want 5/5", cfg.FileConcurrency, cfg.ChunkConcurrency)
	}
	if cfg.MaxChunkFailures != 0 {
		t.Errorf("MaxChunkFailures = %d, want 0", cfg.MaxChunkFailures)
	}
	if want := filepath.Join("/data", "mdtranslate", "sessions"); cfg.OutputDir != want {
		t.Errorf("OutputDir = %s, want %s", cfg.OutputDir, want)
	}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Error("RequireAPIKey() should fail without OPENAI_API_KEY")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("TRANSLATE_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_TIMEOUT", "30s")
	t.Setenv("OPENAI_MAX_RETRIES", "3")
	t.Setenv("OPENAI_RETRY_DELAY", "1s")
	t.Setenv("TRANSLATE_MAX_TOKENS", "500")
	t.Setenv("MAX_CONCURRENCY_FILES", "2")
	t.Setenv("MAX_CONCURRENCY_CHUNKS", "8")
	t.Setenv("TRANSLATE_MAX_CHUNK_FAILURES", "-1")
	t.Setenv("TRANSLATE_OUTPUT_DIR", "/tmp/sessions")
	t.Setenv("TRANSLATE_TEMPLATE", "prompt.tmpl")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("BaseURL = %s", cfg.BaseURL)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %s, want gpt-4o-mini", cfg.Model)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != time.Second {
		t.Errorf("RetryDelay = %v, want 1s", cfg.RetryDelay)
	}
	if cfg.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", cfg.MaxTokens)
	}
	if cfg.FileConcurrency != 2 || cfg.ChunkConcurrency != 8 {
		t.Errorf("concurrency = %d/%d, want 2/8", cfg.FileConcurrency, cfg.ChunkConcurrency)
	}
	if cfg.MaxChunkFailures != -1 {
		t.Errorf("MaxChunkFailures = %d, want -1", cfg.MaxChunkFailures)
	}
	if cfg.OutputDir != "/tmp/sessions" {
		t.Errorf("OutputDir = %s, want /tmp/sessions", cfg.OutputDir)
	}
	if cfg.Template != "prompt.tmpl" {
		t.Errorf("Template = %s, want prompt.tmpl", cfg.Template)
	}
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSLATE_MAX_TOKENS", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.MaxTokens != 2000 {
		t.Errorf("MaxTokens = %d, want default 2000", cfg.MaxTokens)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{MaxTokens: 10, FileConcurrency: 1, ChunkConcurrency: 1, Timeout: time.Second}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"retries above 10", func(c *Config) { c.MaxRetries = 15 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"zero file concurrency", func(c *Config) { c.FileConcurrency = 0 }},
		{"chunk concurrency above 100", func(c *Config) { c.ChunkConcurrency = 101 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() on valid config: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestEnvFiles(t *testing.T) {
	tests := []struct {
		env  string
		want []string
	}{
		{"", []string{".env.local", ".env"}},
		{"development", []string{".env.development.local", ".env.local", ".env.development", ".env"}},
		{"test", []string{".env.test.local", ".env.test", ".env"}},
	}
	for _, tt := range tests {
		if got := EnvFiles(tt.env); !slices.Equal(got, tt.want) {
			t.Errorf("EnvFiles(%q) = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestLoadEnvFiles_SpecificFilesWin(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(".env", "TRANSLATE_MODEL=from-env\nTRANSLATE_MAX_TOKENS=100\n")
	write(".env.test", "TRANSLATE_MODEL=from-env-test\n")
	write(".env.local", "TRANSLATE_MODEL=from-local\nOPENAI_API_KEY=local-key\n")

	loaded, err := LoadEnvFiles(dir, "test")
	if err != nil {
		t.Fatalf("LoadEnvFiles() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("loaded = %v, want .env.test and .env", loaded)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Model != "from-env-test" {
		t.Errorf("Model = %s, want from-env-test", cfg.Model)
	}
	if cfg.MaxTokens != 100 {
		t.Errorf("MaxTokens = %d, want 100", cfg.MaxTokens)
	}
	if cfg.OpenAIKey != "" {
		t.Error(".env.local must be skipped in the test environment")
	}
}

func TestLoadEnvFiles_ProcessEnvWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TRANSLATE_MODEL=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRANSLATE_MODEL", "from-process")

	if _, err := LoadEnvFiles(dir, ""); err != nil {
		t.Fatalf("LoadEnvFiles() error = %v", err)
	}
	if got := os.Getenv("TRANSLATE_MODEL"); got != "from-process" {
		t.Errorf("TRANSLATE_MODEL = %s, want from-process", got)
	}
}
