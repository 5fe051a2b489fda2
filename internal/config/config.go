package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the resolved application configuration.
type Config struct {
	// Theme name: "dark" (default) or "light".
	Theme string `mapstructure:"theme"`
	// Editor used by jump-to-file (falls back to $EDITOR).
	Editor string `mapstructure:"editor"`
	// HiddenSections lists sections to skip entirely. Valid values:
	// untracked, unstaged, staged, stashes, unpulled, unmerged, recent.
	HiddenSections []string `mapstructure:"hidden_sections"`
	// FoldedSections lists sections that start folded.
	FoldedSections []string `mapstructure:"folded_sections"`
	// FoldHunks makes newly appearing hunks start folded.
	FoldHunks bool `mapstructure:"fold_hunks"`
	// RecentCount is how many commits the recent section shows.
	RecentCount int `mapstructure:"recent_count"`
	// WatchDebounceMs coalesces bursts of filesystem events.
	WatchDebounceMs int `mapstructure:"watch_debounce_ms"`
	// ConfirmDestructive prompts before discarding changes.
	ConfirmDestructive bool `mapstructure:"confirm_destructive"`
	// SnapshotCacheMs is the TTL for the snapshot cache.
	SnapshotCacheMs int `mapstructure:"snapshot_cache_ms"`
}

// Load reads configuration from ~/.config/gitfold/config.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := configDirectory()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("GITFOLD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// No config file: run on defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", "dark")
	v.SetDefault("editor", "")
	v.SetDefault("hidden_sections", []string{})
	v.SetDefault("folded_sections", []string{"recent"})
	v.SetDefault("fold_hunks", false)
	v.SetDefault("recent_count", 10)
	v.SetDefault("watch_debounce_ms", 200)
	v.SetDefault("confirm_destructive", true)
	v.SetDefault("snapshot_cache_ms", 1500)
}

func configDirectory() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitfold")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gitfold")
}
