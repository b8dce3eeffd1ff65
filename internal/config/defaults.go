package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/hockey.yaml
var defaultHockeyYAML []byte

// DefaultHockeyConfig returns the default hockey configuration.
func DefaultHockeyConfig() HockeyConfig {
	return HockeyConfig{
		Field: FieldConfig{
			Width:  800,
			Height: 400,
		},
		Paddle: PaddleConfig{
			Width:  15,
			Height: 80,
			Inset:  20,
			Speed:  6,
		},
		Puck: PuckConfig{
			Radius:          12,
			BaseSpeed:       6,
			SpeedMultiplier: 1,
			SpinFactor:      1.5,
			MaxSpeedFactor:  2,
		},
		Rules: RulesConfig{
			WinScore: 10,
		},
		AI: AIConfig{
			Difficulty: 0.75,
			JitterMin:  0.8,
			JitterSpan: 0.4,
			DeadZone:   4,
		},
		Input: InputConfig{
			HoldWindow: 150 * time.Millisecond,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.6,
		},
		Network: NetworkConfig{
			RelayURL:       "ws://localhost:8080/play",
			BroadcastEvery: 2,
			LobbyTimeout:   2 * time.Minute,
			DialTimeout:    5 * time.Second,
		},
	}
}
