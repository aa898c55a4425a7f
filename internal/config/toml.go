// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Voice    VoiceConfig    `toml:"voice"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Dataset         *string  `toml:"dataset"`
	AdvanceDelayMS  *int     `toml:"advance-delay-ms"`
	SummaryDelayMS  *int     `toml:"summary-delay-ms"`
	ChallengeRounds *int     `toml:"challenge-rounds"`
	MaxQuantity     *int     `toml:"max-quantity"`
	Decoys          *int     `toml:"decoys"`
	FocusWeak       *bool    `toml:"focus-weak"`
	WeakTop         *int     `toml:"weak-top"`
	WeakFactor      *float64 `toml:"weak-factor"`
}

// VoiceConfig maps speech settings. Enabled and Fallback seed the persisted
// preferences only on first run.
type VoiceConfig struct {
	Enabled        *bool   `toml:"enabled"`
	Fallback       *bool   `toml:"fallback"`
	Command        *string `toml:"command"`
	Player         *string `toml:"player"`
	Endpoint       *string `toml:"endpoint"`
	StartTimeoutMS *int    `toml:"start-timeout-ms"`
	CacheSize      *int    `toml:"cache-size"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
