package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameConfig     `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// GameConfig contains match creation defaults
type GameConfig struct {
	GridSize            int    `hcl:"grid_size,optional"`
	HandSize            int    `hcl:"hand_size,optional"`
	CardSetFile         string `hcl:"card_set,optional"`
	DeckFile            string `hcl:"deck_file,optional"`
	Deck                string `hcl:"deck,optional"`
	ReadyTimeoutSeconds int    `hcl:"ready_timeout_seconds,optional"`
	Seed                *int64 `hcl:"seed,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			LogFile:  "gridclash-server.log",
		},
		Game: GameConfig{
			GridSize:            7,
			HandSize:            6,
			Deck:                "starter",
			ReadyTimeoutSeconds: 60,
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = "gridclash-server.log"
	}
	if config.Game.GridSize == 0 {
		config.Game.GridSize = 7
	}
	if config.Game.HandSize == 0 {
		config.Game.HandSize = 6
	}
	if config.Game.Deck == "" {
		config.Game.Deck = "starter"
	}
	if config.Game.ReadyTimeoutSeconds == 0 {
		config.Game.ReadyTimeoutSeconds = 60
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Game.GridSize < 5 || c.Game.GridSize > 7 {
		return fmt.Errorf("grid size must be between 5 and 7, got %d", c.Game.GridSize)
	}
	if c.Game.HandSize < 1 {
		return fmt.Errorf("hand size must be positive, got %d", c.Game.HandSize)
	}
	if c.Game.ReadyTimeoutSeconds < 0 {
		return fmt.Errorf("ready timeout must not be negative, got %d", c.Game.ReadyTimeoutSeconds)
	}
	if c.Game.DeckFile != "" && c.Game.Deck == "" {
		return fmt.Errorf("deck_file requires a deck name")
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
