package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config holds the runtime knobs of the game service
type Config struct {
	StartingLives int
	MinAIDelay    time.Duration
	MaxAIDelay    time.Duration
	ScoringPause  time.Duration
	MaxPlayers    int
}

// DefaultConfig returns the defaults used when no config file is given
func DefaultConfig() Config {
	return Config{
		StartingLives: 3,
		MinAIDelay:    1 * time.Second,
		MaxAIDelay:    2 * time.Second,
		ScoringPause:  4 * time.Second,
		MaxPlayers:    9,
	}
}

// ServerConfig represents the complete server configuration file
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains room/game defaults
type GameSettings struct {
	StartingLives  int `hcl:"starting_lives,optional"`
	MinAIDelayMs   int `hcl:"min_ai_delay_ms,optional"`
	MaxAIDelayMs   int `hcl:"max_ai_delay_ms,optional"`
	ScoringPauseMs int `hcl:"scoring_pause_ms,optional"`
	MaxPlayers     int `hcl:"max_players,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			StartingLives:  3,
			MinAIDelayMs:   1000,
			MaxAIDelayMs:   2000,
			ScoringPauseMs: 4000,
			MaxPlayers:     9,
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A
// missing file yields the defaults.
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

	defaults := DefaultServerConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.StartingLives == 0 {
		config.Game.StartingLives = defaults.Game.StartingLives
	}
	if config.Game.MinAIDelayMs == 0 {
		config.Game.MinAIDelayMs = defaults.Game.MinAIDelayMs
	}
	if config.Game.MaxAIDelayMs == 0 {
		config.Game.MaxAIDelayMs = defaults.Game.MaxAIDelayMs
	}
	if config.Game.ScoringPauseMs == 0 {
		config.Game.ScoringPauseMs = defaults.Game.ScoringPauseMs
	}
	if config.Game.MaxPlayers == 0 {
		config.Game.MaxPlayers = defaults.Game.MaxPlayers
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.StartingLives < 1 {
		return fmt.Errorf("starting lives must be positive, got %d", c.Game.StartingLives)
	}
	// A 32-card deck supports at most 8 non-dealer hands plus the two
	// dealer sets, so 9 seats is the hard ceiling.
	if c.Game.MaxPlayers < 2 || c.Game.MaxPlayers > 9 {
		return fmt.Errorf("max players must be between 2 and 9, got %d", c.Game.MaxPlayers)
	}
	if c.Game.MinAIDelayMs > c.Game.MaxAIDelayMs {
		return fmt.Errorf("min AI delay %dms exceeds max %dms", c.Game.MinAIDelayMs, c.Game.MaxAIDelayMs)
	}
	return nil
}

// GetServerAddress returns the full listen address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameConfig converts file settings into the service runtime config
func (c *ServerConfig) GameConfig() Config {
	return Config{
		StartingLives: c.Game.StartingLives,
		MinAIDelay:    time.Duration(c.Game.MinAIDelayMs) * time.Millisecond,
		MaxAIDelay:    time.Duration(c.Game.MaxAIDelayMs) * time.Millisecond,
		ScoringPause:  time.Duration(c.Game.ScoringPauseMs) * time.Millisecond,
		MaxPlayers:    c.Game.MaxPlayers,
	}
}
