// Package settings loads the optional TOML runtime settings file that tunes
// the checker: worker counts, probe timeouts, and status-cache behavior.
// Module and tool declarations live in HCL; this file only carries knobs.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Settings holds the tunable runtime parameters. Zero values are filled with
// defaults by Load.
type Settings struct {
	// Concurrency bounds how many tool probes run at once.
	Concurrency int `toml:"concurrency"`
	// CheckTimeoutMS is the hard per-probe timeout in milliseconds.
	CheckTimeoutMS int `toml:"check_timeout_ms"`
	// WarmupTimeoutMS bounds the one-time package-manager index warm-up.
	WarmupTimeoutMS int `toml:"warmup_timeout_ms"`
	// CachePath is where the tool status cache is persisted.
	CachePath string `toml:"cache_path"`
	// CacheTTLSeconds is how long a cached result stays fresh.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

const (
	defaultConcurrency     = 16
	defaultCheckTimeoutMS  = 1200
	defaultWarmupTimeoutMS = 500
	defaultCacheTTLSeconds = 6 * 60 * 60
)

// Load reads settings from path. A missing file is not an error: defaults
// apply. An unreadable or invalid file is an error, since the operator
// explicitly wrote it.
func Load(path string) (Settings, error) {
	var s Settings
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("settings load failed (%s): %w", path, err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, &s); err != nil {
				return Settings{}, fmt.Errorf("settings parse failed (%s): %w", path, err)
			}
		}
	}

	s.fillDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) fillDefaults() {
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.CheckTimeoutMS == 0 {
		s.CheckTimeoutMS = defaultCheckTimeoutMS
	}
	if s.WarmupTimeoutMS == 0 {
		s.WarmupTimeoutMS = defaultWarmupTimeoutMS
	}
	if s.CacheTTLSeconds == 0 {
		s.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if s.CachePath == "" {
		s.CachePath = defaultCachePath()
	}
}

// Validate rejects settings that would stall or spin the checker.
func (s Settings) Validate() error {
	if s.Concurrency < 1 {
		return fmt.Errorf("settings: concurrency must be positive, got %d", s.Concurrency)
	}
	if s.CheckTimeoutMS < 1 {
		return fmt.Errorf("settings: check_timeout_ms must be positive, got %d", s.CheckTimeoutMS)
	}
	if s.WarmupTimeoutMS < 1 {
		return fmt.Errorf("settings: warmup_timeout_ms must be positive, got %d", s.WarmupTimeoutMS)
	}
	if s.CacheTTLSeconds < 0 {
		return fmt.Errorf("settings: cache_ttl_seconds must not be negative, got %d", s.CacheTTLSeconds)
	}
	return nil
}

// CheckTimeout returns the per-probe timeout as a duration.
func (s Settings) CheckTimeout() time.Duration {
	return time.Duration(s.CheckTimeoutMS) * time.Millisecond
}

// WarmupTimeout returns the warm-up timeout as a duration.
func (s Settings) WarmupTimeout() time.Duration {
	return time.Duration(s.WarmupTimeoutMS) * time.Millisecond
}

// CacheTTL returns the cache freshness window as a duration.
func (s Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// defaultCachePath places the cache under the user cache directory, falling
// back to the temp dir when the platform offers none.
func defaultCachePath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "loom", "toolstatus.json")
}
