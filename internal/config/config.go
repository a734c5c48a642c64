package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config carries the process-wide values that are set once at startup
// and passed by reference into the engine constructors. Nothing in the
// orchestration packages reads viper or the environment directly.
type Config struct {
	// DataDir is where networks and the topology file live.
	DataDir string `mapstructure:"data_dir"`
	// LegacyDataDir is checked for a networks file left behind by a
	// previous major version. Empty disables the check.
	LegacyDataDir string `mapstructure:"legacy_data_dir"`
	// ForceMigrations runs the migration pipeline on every load even
	// when the file is already current. Used during development so
	// migration steps are exercised before a version bump ships.
	ForceMigrations bool          `mapstructure:"force_migrations"`
	Docker          DockerConfig  `mapstructure:"docker"`
	Bitcoin         BitcoinConfig `mapstructure:"bitcoin"`
}

// DockerConfig overrides how the container runtime is reached. Both
// values default to the platform defaults when empty.
type DockerConfig struct {
	// Socket overrides DOCKER_HOST for every docker invocation.
	Socket string `mapstructure:"socket"`
	// ComposePath points at a standalone compose binary. When empty
	// the controller uses the `docker compose` plugin.
	ComposePath string `mapstructure:"compose_path"`
}

// BitcoinConfig tunes the backend sync behaviour.
type BitcoinConfig struct {
	// SettleDelayMS is how long to wait after mining before refreshing
	// node info. A heuristic, not derived from observed propagation;
	// raise it on slow machines if refreshes come back stale.
	SettleDelayMS int `mapstructure:"settle_delay_ms"`
}

// SettleDelay returns the post-mine settle delay as a duration.
func (b BitcoinConfig) SettleDelay() time.Duration {
	return time.Duration(b.SettleDelayMS) * time.Millisecond
}

// NetworksDir is where per-network working directories are created.
func (c *Config) NetworksDir() string {
	return filepath.Join(c.DataDir, "networks")
}

// Load builds the config from viper with code-set defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.Bitcoin.SettleDelayMS = 500

	home, err := os.UserHomeDir()
	if err == nil {
		cfg.DataDir = filepath.Join(home, ".polar")
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
