package app

import (
	"errors"
	"fmt"
)

// Output modes.
const (
	ModeReport = "report"
	ModeOrder  = "order"
	ModeStatus = "status"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPath is the workspace configuration file or directory.
	ConfigPath string
	// ModulesPath is the root scanned for module manifests.
	ModulesPath string
	// SettingsPath is the optional TOML runtime settings file.
	SettingsPath string

	// Mode selects the output: full report, bare load order, or tool status.
	Mode string

	LogFormat string
	LogLevel  string

	// Ordering knobs, passed through to the orderer.
	Reverse              bool
	Alphabetical         bool
	HideDisabled         bool
	PrioritizeConfigured bool

	// NoCache bypasses the tool status cache entirely.
	NoCache bool
}

// NewConfig validates a config and returns it, filling mode defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeReport
	}
	switch cfg.Mode {
	case ModeReport, ModeOrder, ModeStatus:
	default:
		return nil, fmt.Errorf("invalid mode %q: must be %q, %q, or %q", cfg.Mode, ModeReport, ModeOrder, ModeStatus)
	}
	return &cfg, nil
}
