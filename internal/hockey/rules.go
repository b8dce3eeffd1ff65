package hockey

import (
	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/core"
)

// Rules holds the fixed geometry and tuning of a match. All lengths are in
// field units; speeds are field units per tick.
type Rules struct {
	FieldWidth   float64
	FieldHeight  float64
	PaddleWidth  float64
	PaddleHeight float64
	PaddleInset  float64
	PaddleSpeed  float64
	PuckRadius   float64
	BaseSpeed    float64
	SpinFactor   float64
	// MaxSpeedFactor caps puck speed at BaseSpeed*multiplier*factor on
	// frames without a paddle hit. Zero disables the cap.
	MaxSpeedFactor float64
	WinScore       int

	AIDifficulty float64
	AIJitterMin  float64
	AIJitterSpan float64
	AIDeadZone   float64
}

// DefaultRules returns the standard 800x400 rink.
func DefaultRules() Rules {
	return RulesFromConfig(config.DefaultHockeyConfig())
}

// RulesFromConfig builds Rules from a loaded configuration.
func RulesFromConfig(cfg config.HockeyConfig) Rules {
	return Rules{
		FieldWidth:     cfg.Field.Width,
		FieldHeight:    cfg.Field.Height,
		PaddleWidth:    cfg.Paddle.Width,
		PaddleHeight:   cfg.Paddle.Height,
		PaddleInset:    cfg.Paddle.Inset,
		PaddleSpeed:    cfg.Paddle.Speed,
		PuckRadius:     cfg.Puck.Radius,
		BaseSpeed:      cfg.Puck.BaseSpeed,
		SpinFactor:     cfg.Puck.SpinFactor,
		MaxSpeedFactor: cfg.Puck.MaxSpeedFactor,
		WinScore:       cfg.Rules.WinScore,
		AIDifficulty:   cfg.AI.Difficulty,
		AIJitterMin:    cfg.AI.JitterMin,
		AIJitterSpan:   cfg.AI.JitterSpan,
		AIDeadZone:     cfg.AI.DeadZone,
	}
}

// Speed returns the puck speed for a multiplier.
func (r Rules) Speed(multiplier float64) float64 {
	return r.BaseSpeed * multiplier
}

// LeftPaddleX is the x of the left paddle's left edge.
func (r Rules) LeftPaddleX() float64 {
	return r.PaddleInset
}

// RightPaddleX is the x of the right paddle's left edge.
func (r Rules) RightPaddleX() float64 {
	return r.FieldWidth - r.PaddleInset - r.PaddleWidth
}

// MaxPaddleY is the largest legal paddle y.
func (r Rules) MaxPaddleY() float64 {
	return r.FieldHeight - r.PaddleHeight
}

// CenteredPaddleY is the paddle y that centres it vertically.
func (r Rules) CenteredPaddleY() float64 {
	return (r.FieldHeight - r.PaddleHeight) / 2
}

// TouchSide decides which paddle a touch at field x controls. The left half
// always belongs to player 1; the right half belongs to player 2 only when a
// second local player exists.
func (r Rules) TouchSide(x float64, mode Mode) core.PlayerID {
	if x < r.FieldWidth/2 {
		return core.Player1
	}
	if mode == ModeTwoPlayer {
		return core.Player2
	}
	return core.PlayerNone
}
