package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ModeRemote, cfg.Mode)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
	assert.Equal(t, 15*time.Minute, cfg.UnlockTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.IsLocalMode())
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "unknown mode", values: map[string]any{"mode": "hybrid"}},
		{name: "remote without server", values: map[string]any{"server_address": ""}},
		{name: "zero unlock ttl", values: map[string]any{"unlock_ttl": "0s"}},
		{name: "negative timeout", values: map[string]any{"request_timeout": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.values))
			assert.Error(t, err)
		})
	}
}

func TestFromViper_LocalModeNeedsNoServer(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"mode": ModeLocal, "server_address": ""}))
	require.NoError(t, err)
	assert.True(t, cfg.IsLocalMode())
}

func TestConfig_Paths(t *testing.T) {
	cfg := &Config{ConfigDir: "/tmp/pv", ServerAddress: "vault.example.com", EnableTLS: true}

	assert.Equal(t, "https://vault.example.com", cfg.BaseURL())
	assert.Equal(t, filepath.Join("/tmp/pv", "token"), cfg.TokenPath())
	assert.Equal(t, filepath.Join("/tmp/pv", "keycache"), cfg.KeyCachePath())
	assert.Equal(t, filepath.Join("/tmp/pv", "vault.db"), cfg.DatabasePath())
}

func TestLoad_ReadsYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("MODE", "")
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("UNLOCK_TTL", "")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	yaml := "mode: local\nunlock_ttl: 1h\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, time.Hour, cfg.UnlockTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestResolveDir(t *testing.T) {
	abs, err := resolveDir("/var/pv")
	require.NoError(t, err)
	assert.Equal(t, "/var/pv", abs)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	rel, err := resolveDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pixelvault"), rel)
}
