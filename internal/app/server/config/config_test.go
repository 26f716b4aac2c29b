package config

import (
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
	cfg, err := fromViper(newViper(map[string]any{
		"database_uri": "postgres://localhost/vault",
	}))
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.Server.RunAddress)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 50*1024*1024, cfg.Entries.MaxBytes)
	assert.Equal(t, 15*time.Minute, cfg.Rotation.StagingTTL)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"database_uri":         "postgres://localhost/vault",
		"app_env":              EnvProd,
		"session_ttl":          "2h",
		"bcrypt_cost":          10,
		"run_address":          "127.0.0.1:9000",
		"max_entry_bytes":      1024,
		"rotation_staging_ttl": "1h",
	}))
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.RunAddress)
	assert.Equal(t, 1024, cfg.Entries.MaxBytes)
	assert.Equal(t, time.Hour, cfg.Rotation.StagingTTL)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "missing database uri", values: map[string]any{}},
		{name: "unknown env", values: map[string]any{"database_uri": "x", "app_env": "qa"}},
		{name: "zero ttl", values: map[string]any{"database_uri": "x", "session_ttl": "0s"}},
		{name: "negative entry cap", values: map[string]any{"database_uri": "x", "max_entry_bytes": -1}},
		{name: "zero rotation ttl", values: map[string]any{"database_uri": "x", "rotation_staging_ttl": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.values))
			assert.Error(t, err)
		})
	}
}

func TestClampCost(t *testing.T) {
	assert.Equal(t, 4, clampCost(1))
	assert.Equal(t, 31, clampCost(40))
	assert.Equal(t, 12, clampCost(12))
}
