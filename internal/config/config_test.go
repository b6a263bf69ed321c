package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.Mkdir(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "test.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}

const validYAML = `
http:
  port: 8100
vector:
  addrs: ["localhost:6379"]
fulltext:
  dsn: "postgres://search_ro:pw@localhost:5432/documents"
embedding:
  base_url: "http://localhost:8080"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	writeConfig(t, validYAML)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected shutdown default 10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Vector.IndexPrefix != "searchgate:idx:" {
		t.Errorf("unexpected index prefix %q", cfg.Vector.IndexPrefix)
	}
	if cfg.FullText.MaxConns != 10 || cfg.FullText.MinConns != 2 {
		t.Errorf("unexpected pool defaults: max=%d min=%d", cfg.FullText.MaxConns, cfg.FullText.MinConns)
	}
	if cfg.Embedding.Provider != "tei" {
		t.Errorf("expected tei provider default, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected 384 dimensions default, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.MaxLimit != 1000 {
		t.Errorf("expected max_limit 1000, got %d", cfg.Search.MaxLimit)
	}
	if cfg.Search.BackendTimeoutSec != 30 {
		t.Errorf("expected backend timeout 30, got %d", cfg.Search.BackendTimeoutSec)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SEARCHGATE_TEST_PW", "s3cret")
	writeConfig(t, `
http:
  port: 8100
vector:
  addrs: ["localhost:6379"]
  password: "${SEARCHGATE_TEST_PW}"
fulltext:
  dsn: "${SEARCHGATE_TEST_DSN:-postgres://localhost/documents}"
embedding:
  base_url: "http://localhost:8080"
`)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Vector.Password != "s3cret" {
		t.Errorf("expected env var expansion, got %q", cfg.Vector.Password)
	}
	if cfg.FullText.DSN != "postgres://localhost/documents" {
		t.Errorf("expected default expansion, got %q", cfg.FullText.DSN)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := Config{
			HTTP:      HTTPConfig{Port: 8100},
			Vector:    VectorConfig{Addrs: []string{"localhost:6379"}},
			FullText:  FullTextConfig{DSN: "postgres://localhost/documents"},
			Embedding: EmbeddingConfig{BaseURL: "http://localhost:8080"},
		}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"no vector addrs", func(c *Config) { c.Vector.Addrs = nil }, true},
		{"no dsn", func(c *Config) { c.FullText.DSN = "" }, true},
		{"no embedding url", func(c *Config) { c.Embedding.BaseURL = "" }, true},
		{"bad provider", func(c *Config) { c.Embedding.Provider = "cohere" }, true},
		{"openai provider ok", func(c *Config) { c.Embedding.Provider = "openai" }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
