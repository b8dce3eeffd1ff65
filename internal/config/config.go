// Package config provides YAML-based game configuration loading and
// difficulty presets for the hockey game.
package config

import (
	"errors"
	"fmt"
	"time"
)

// HockeyConfig contains all configuration for the hockey game.
type HockeyConfig struct {
	Field   FieldConfig   `yaml:"field"`
	Paddle  PaddleConfig  `yaml:"paddle"`
	Puck    PuckConfig    `yaml:"puck"`
	Rules   RulesConfig   `yaml:"rules"`
	AI      AIConfig      `yaml:"ai"`
	Input   InputConfig   `yaml:"input"`
	Audio   AudioConfig   `yaml:"audio"`
	Network NetworkConfig `yaml:"network"`
}

// FieldConfig defines the virtual rink size in field units.
type FieldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PaddleConfig defines paddle ("stick") geometry and speed.
type PaddleConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Inset  float64 `yaml:"inset"` // Distance from the side wall
	Speed  float64 `yaml:"speed"` // Field units per tick
}

// PuckConfig defines puck size and speed.
type PuckConfig struct {
	Radius          float64 `yaml:"radius"`
	BaseSpeed       float64 `yaml:"base_speed"`
	SpeedMultiplier float64 `yaml:"speed_multiplier"`
	SpinFactor      float64 `yaml:"spin_factor"`
	MaxSpeedFactor  float64 `yaml:"max_speed_factor"` // 0 disables the cap
}

// RulesConfig defines match rules.
type RulesConfig struct {
	WinScore int `yaml:"win_score"`
}

// AIConfig defines the single-player opponent.
type AIConfig struct {
	Difficulty float64 `yaml:"difficulty"`  // Fraction of paddle speed
	JitterMin  float64 `yaml:"jitter_min"`  // Lower bound of the per-tick speed factor
	JitterSpan float64 `yaml:"jitter_span"` // Width of the per-tick speed factor range
	DeadZone   float64 `yaml:"dead_zone"`
}

// InputConfig defines terminal input handling.
type InputConfig struct {
	// HoldWindow is how long a key counts as held after its last repeat.
	// Terminals deliver key presses, never releases.
	HoldWindow time.Duration `yaml:"hold_window"`
}

// AudioConfig defines the sound collaborator.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"` // 0.0 .. 1.0
}

// NetworkConfig defines online play.
type NetworkConfig struct {
	RelayURL       string        `yaml:"relay_url"`
	BroadcastEvery int           `yaml:"broadcast_every"` // Ticks between state broadcasts
	LobbyTimeout   time.Duration `yaml:"lobby_timeout"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
}

// Validate reports configuration values the game cannot run with.
func (c HockeyConfig) Validate() error {
	var errs []error
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		errs = append(errs, fmt.Errorf("field size must be positive, got %vx%v", c.Field.Width, c.Field.Height))
	}
	if c.Paddle.Width <= 0 || c.Paddle.Height <= 0 {
		errs = append(errs, fmt.Errorf("paddle size must be positive, got %vx%v", c.Paddle.Width, c.Paddle.Height))
	}
	if c.Paddle.Height > c.Field.Height {
		errs = append(errs, fmt.Errorf("paddle height %v exceeds field height %v", c.Paddle.Height, c.Field.Height))
	}
	if c.Puck.Radius <= 0 {
		errs = append(errs, fmt.Errorf("puck radius must be positive, got %v", c.Puck.Radius))
	}
	if c.Puck.BaseSpeed <= 0 || c.Puck.SpeedMultiplier <= 0 {
		errs = append(errs, errors.New("puck speed and multiplier must be positive"))
	}
	if c.Rules.WinScore < 1 {
		errs = append(errs, fmt.Errorf("win score must be at least 1, got %d", c.Rules.WinScore))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio volume must be within [0, 1], got %v", c.Audio.Volume))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParseDifficulty maps a CLI string onto a preset. Unknown values return
// the empty preset, meaning "keep the config file's values".
func ParseDifficulty(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return DifficultyPreset(s)
	default:
		return ""
	}
}
