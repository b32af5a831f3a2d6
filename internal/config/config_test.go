package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "memory", cfg.History.Backend)
	assert.Equal(t, 10, cfg.History.MaxEntries)
	assert.Equal(t, "rules", cfg.Classifier.Mode)
	assert.Equal(t, 1500*time.Millisecond, cfg.Breach.RequestInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Classifier.RequestInterval)
	assert.Equal(t, "breachdirectory.p.rapidapi.com", cfg.Breach.RapidAPIHost)
	assert.True(t, cfg.DarkWeb.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  environment: production
history:
  backend: redis
  max_entries: 5
classifier:
  mode: ai
`), 0o600))

	t.Setenv("RAPIDAPI_KEY", "rapid-secret")
	t.Setenv("SHADOW_REDIS_PORT", "6380")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis", cfg.History.Backend)
	assert.Equal(t, 5, cfg.History.MaxEntries)
	assert.Equal(t, "ai", cfg.Classifier.Mode)
	assert.Equal(t, "rapid-secret", cfg.Breach.RapidAPIKey)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			History:    HistoryConfig{Backend: "memory", MaxEntries: 10},
			Waitlist:   WaitlistConfig{Backend: "memory"},
			Classifier: ClassifierConfig{Mode: "rules"},
			Breach:     BreachConfig{Provider: "hibp"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown history backend", func(c *Config) { c.History.Backend = "disk" }},
		{"zero history size", func(c *Config) { c.History.MaxEntries = 0 }},
		{"unknown waitlist backend", func(c *Config) { c.Waitlist.Backend = "redis" }},
		{"unknown classifier mode", func(c *Config) { c.Classifier.Mode = "ml" }},
		{"unknown breach provider", func(c *Config) { c.Breach.Provider = "dehashed" }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, DBName: "shadow", SSLMode: "disable", Schema: "public"}
	assert.Equal(t, "postgres://u:p@db:5432/shadow?sslmode=disable&search_path=public", c.DSN())
}
