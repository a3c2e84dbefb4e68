package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains process-level configuration.
type ServerSettings struct {
	Address    string `hcl:"address,optional"`
	CORSOrigin string `hcl:"cors_origin,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	Quiet      bool   `hcl:"quiet,optional"`
}

// GameSettings paces the engine timers. All values are milliseconds.
type GameSettings struct {
	ShowdownDelayMs    int `hcl:"showdown_delay_ms,optional"`
	AutoAdvanceStepMs  int `hcl:"auto_advance_step_ms,optional"`
	PreShowdownDelayMs int `hcl:"pre_showdown_delay_ms,optional"`
	ActionTimeoutMs    int `hcl:"action_timeout_ms,optional"` // 0 disables
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:    ":8080",
			CORSOrigin: "*",
			LogLevel:   "info",
		},
		Game: GameSettings{
			ShowdownDelayMs:    4000,
			AutoAdvanceStepMs:  3000,
			PreShowdownDelayMs: 2000,
			ActionTimeoutMs:    0,
		},
	}
}

// LoadConfig loads HCL configuration, falling back to defaults when the
// file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.CORSOrigin == "" {
		config.Server.CORSOrigin = defaults.Server.CORSOrigin
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.ShowdownDelayMs == 0 {
		config.Game.ShowdownDelayMs = defaults.Game.ShowdownDelayMs
	}
	if config.Game.AutoAdvanceStepMs == 0 {
		config.Game.AutoAdvanceStepMs = defaults.Game.AutoAdvanceStepMs
	}
	if config.Game.PreShowdownDelayMs == 0 {
		config.Game.PreShowdownDelayMs = defaults.Game.PreShowdownDelayMs
	}

	return &config, nil
}

// Validate checks the configuration for nonsense values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Game.ShowdownDelayMs < 0 || c.Game.AutoAdvanceStepMs < 0 ||
		c.Game.PreShowdownDelayMs < 0 || c.Game.ActionTimeoutMs < 0 {
		return fmt.Errorf("timer settings must not be negative")
	}
	return nil
}

// ShowdownDelay is the display pause after a showdown before the next hand.
func (c *Config) ShowdownDelay() time.Duration {
	return time.Duration(c.Game.ShowdownDelayMs) * time.Millisecond
}

// AutoAdvanceStep is the pacing delay between auto-dealt streets.
func (c *Config) AutoAdvanceStep() time.Duration {
	return time.Duration(c.Game.AutoAdvanceStepMs) * time.Millisecond
}

// PreShowdownDelay is the pause between the auto-dealt river and showdown.
func (c *Config) PreShowdownDelay() time.Duration {
	return time.Duration(c.Game.PreShowdownDelayMs) * time.Millisecond
}

// ActionTimeout is the per-player decision timeout; zero disables it.
func (c *Config) ActionTimeout() time.Duration {
	return time.Duration(c.Game.ActionTimeoutMs) * time.Millisecond
}
