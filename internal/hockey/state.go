// Package hockey implements the hockey pong simulation: a puck bouncing
// between two vertically moving paddles, first to a fixed score wins.
//
// Update is a pure function over State; Game wraps it as the stateful
// store the platform drives once per tick.
package hockey

import (
	"fmt"

	"github.com/vovakirdan/hockey-pong/internal/core"
)

// Mode selects who controls the right paddle.
type Mode int

const (
	// ModeSinglePlayer gives the right paddle to the AI.
	ModeSinglePlayer Mode = iota
	// ModeTwoPlayer gives the right paddle to a second local player (arrow keys).
	ModeTwoPlayer
	// ModeOnline gives the right paddle to a remote peer. Its position
	// arrives as the Player2 touch of the input state.
	ModeOnline
)

// String returns the mode label used in menus and storage.
func (m Mode) String() string {
	switch m {
	case ModeSinglePlayer:
		return "1-player"
	case ModeTwoPlayer:
		return "2-player"
	case ModeOnline:
		return "online"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "1-player", "1p", "single":
		return ModeSinglePlayer, nil
	case "2-player", "2p", "two":
		return ModeTwoPlayer, nil
	case "online":
		return ModeOnline, nil
	default:
		return 0, fmt.Errorf("hockey: unknown mode %q", s)
	}
}

// Puck is the moving object. (X, Y) is its centre.
type Puck struct {
	X, Y   float64
	DX, DY float64
}

// Paddle is a stick. X is fixed per side; Y is the top edge.
type Paddle struct {
	X, Y float64
}

// Score holds both players' goals.
type Score struct {
	Player1 int
	Player2 int
}

// Of returns the score of one side.
func (s Score) Of(p core.PlayerID) int {
	switch p {
	case core.Player1:
		return s.Player1
	case core.Player2:
		return s.Player2
	default:
		return 0
	}
}

// State is a complete snapshot of a match. It is a value type: Update
// returns a new State and never mutates its argument.
type State struct {
	Puck    Puck
	Paddle1 Paddle
	Paddle2 Paddle
	Score   Score

	Running     bool
	Winner      core.PlayerID
	Celebrating bool

	SpeedMultiplier float64
	Mode            Mode
	Tick            uint64
}

// NewState returns the initial snapshot: puck centred, paddles centred,
// 0-0, not running.
func NewState(r Rules, mode Mode, speedMultiplier float64) State {
	if speedMultiplier <= 0 {
		speedMultiplier = 1
	}
	speed := r.Speed(speedMultiplier)
	return State{
		Puck: Puck{
			X:  r.FieldWidth / 2,
			Y:  r.FieldHeight / 2,
			DX: speed,
			DY: speed,
		},
		Paddle1:         Paddle{X: r.LeftPaddleX(), Y: r.CenteredPaddleY()},
		Paddle2:         Paddle{X: r.RightPaddleX(), Y: r.CenteredPaddleY()},
		SpeedMultiplier: speedMultiplier,
		Mode:            mode,
	}
}

// Reset returns a fresh snapshot that keeps the speed multiplier and mode.
func (s State) Reset(r Rules) State {
	return NewState(r, s.Mode, s.SpeedMultiplier)
}

// Status summarises the snapshot for the platform.
func (s State) Status() core.GameState {
	return core.GameState{
		Score1:  s.Score.Player1,
		Score2:  s.Score.Player2,
		Running: s.Running,
		Winner:  s.Winner,
	}
}

// PaddleY returns the paddle top for a side.
func (s State) PaddleY(side core.PlayerID) float64 {
	if side == core.Player2 {
		return s.Paddle2.Y
	}
	return s.Paddle1.Y
}
