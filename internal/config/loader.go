package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables that override loaded configuration.
const (
	EnvRelayURL = "HOCKEY_RELAY_URL"
	EnvAudio    = "HOCKEY_AUDIO"
)

// LoadHockey loads the hockey configuration.
// Search order: customPath -> ~/.hockey/configs/hockey.yaml -> ./configs/hockey.yaml -> embedded default
//
// Files are decoded on top of the built-in defaults, so a file only needs
// the keys it changes.
func LoadHockey(customPath string) (HockeyConfig, error) {
	cfg := DefaultHockeyConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return applyEnv(cfg), nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("hockey.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			candidate := DefaultHockeyConfig()
			if err := yaml.Unmarshal(data, &candidate); err == nil {
				return applyEnv(candidate), nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "hockey.yaml")); err == nil {
		candidate := DefaultHockeyConfig()
		if err := yaml.Unmarshal(data, &candidate); err == nil {
			return applyEnv(candidate), nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultHockeyYAML, &cfg); err != nil {
		return applyEnv(DefaultHockeyConfig()), nil // Fallback to hardcoded if embed fails
	}
	return applyEnv(cfg), nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hockey", "configs", filename)
}

// applyEnv overlays environment overrides.
func applyEnv(cfg HockeyConfig) HockeyConfig {
	cfg.Network.RelayURL = GetEnv(EnvRelayURL, cfg.Network.RelayURL)
	if v, ok := os.LookupEnv(EnvAudio); ok {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Audio.Enabled = enabled
		}
	}
	return cfg
}

// GetEnv returns the value of an environment variable or a fallback.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ApplyHockeyPreset adjusts puck speed and AI strength for a difficulty preset.
// The empty preset leaves the config untouched.
func ApplyHockeyPreset(cfg *HockeyConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Puck.SpeedMultiplier = 0.75
		cfg.AI.Difficulty = 0.55
	case DifficultyNormal:
		cfg.Puck.SpeedMultiplier = 1.0
		cfg.AI.Difficulty = 0.75
	case DifficultyHard:
		cfg.Puck.SpeedMultiplier = 1.35
		cfg.AI.Difficulty = 0.95
	}
}
