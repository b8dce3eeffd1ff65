package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// GameState is the platform-facing summary of a match.
type GameState struct {
	Score1  int
	Score2  int
	Running bool
	Winner  PlayerID
}

// GameOver reports whether the match has a winner.
func (s GameState) GameOver() bool {
	return s.Winner != PlayerNone
}

// Event is an intent raised by a simulation step for collaborators
// (audio, network) to act on.
type Event int

const (
	EventPaddleHit Event = iota + 1
	EventWallBounce
	EventGoalScored
	EventMatchWon
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventPaddleHit:
		return "paddleHit"
	case EventWallBounce:
		return "wallBounce"
	case EventGoalScored:
		return "goalScored"
	case EventMatchWon:
		return "matchWon"
	default:
		return "unknown"
	}
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State  GameState
	Events []Event
}
