package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, time.Second, cfg.Brew.Tick)
	assert.Equal(t, 2*time.Minute, cfg.Brew.PausedNudge)
	assert.True(t, cfg.Seed)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "ottobrew.yaml", `
log_level: verbose
http:
  addr: 127.0.0.1:9000
storage:
  backend: Redis
  redis:
    addr: redis:6379
    ttl: 24h
brew:
  paused_nudge: 5m
chime:
  enabled: true
  volume: 0.8
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "verbose", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, "ottobrew:", cfg.Storage.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, 24*time.Hour, cfg.Storage.Redis.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Brew.PausedNudge)
	assert.Equal(t, time.Second, cfg.Brew.Tick)
	assert.True(t, cfg.Chime.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvGPTKey, "k")
	t.Setenv(EnvGPTEndpoint, "https://example.test/chat")
	t.Setenv(EnvRedisDB, "3")
	t.Setenv(EnvChime, "true")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, 3, cfg.Storage.Redis.DB)
	assert.True(t, cfg.Chime.Enabled)
}

func TestDotEnvFile(t *testing.T) {
	env := writeFile(t, ".env", "OTTOBREW_HTTP_ADDR=:7070\n")
	// Make sure the variable is restored after the test.
	t.Setenv(EnvHTTPAddr, "")
	require.NoError(t, os.Unsetenv(EnvHTTPAddr))

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)

	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err, "a missing .env is fine")
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "storage:\n  backend: etcd\n"},
		{"zero tick", "brew:\n  tick: 0s\n"},
		{"loud chime", "chime:\n  volume: 2\n"},
		{"bad yaml", "http: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", tt.content), "")
			assert.Error(t, err)
		})
	}

	t.Run("bad env", func(t *testing.T) {
		t.Setenv(EnvRedisDB, "three")
		_, err := Load("", "")
		assert.Error(t, err)
	})

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}
