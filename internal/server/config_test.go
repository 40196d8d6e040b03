package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	assert.Equal(t, 7, cfg.Game.GridSize)
	assert.Equal(t, 6, cfg.Game.HandSize)
	assert.Equal(t, "starter", cfg.Game.Deck)
	assert.NoError(t, cfg.Validate())
}

func TestLoadServerConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

game {
  grid_size             = 5
  ready_timeout_seconds = 15
  seed                  = 1234
}
`), 0o644))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, 5, cfg.Game.GridSize)
	assert.Equal(t, 15, cfg.Game.ReadyTimeoutSeconds)
	require.NotNil(t, cfg.Game.Seed)
	assert.Equal(t, int64(1234), *cfg.Game.Seed)
	assert.Equal(t, 6, cfg.Game.HandSize, "unset fields fall back to defaults")
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"bad port", func(c *ServerConfig) { c.Server.Port = 0 }, "invalid port"},
		{"grid too small", func(c *ServerConfig) { c.Game.GridSize = 4 }, "grid size"},
		{"grid too large", func(c *ServerConfig) { c.Game.GridSize = 8 }, "grid size"},
		{"bad hand size", func(c *ServerConfig) { c.Game.HandSize = 0 }, "hand size"},
		{"negative timeout", func(c *ServerConfig) { c.Game.ReadyTimeoutSeconds = -1 }, "ready timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoadServerConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server { address = `), 0o644))

	_, err := LoadServerConfig(path)
	assert.Error(t, err)
}
