package hockey

import (
	"math/rand"

	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/registry"
)

// StickType is the drawn shape of the paddles. It has no effect on physics.
type StickType int

const (
	StickNormal StickType = iota
	StickGoalie
)

// String returns the stick label.
func (t StickType) String() string {
	if t == StickGoalie {
		return "goalie"
	}
	return "normal"
}

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names keep the
// values from the config file.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParseDifficulty(preset)
}

// Game is the match store: it owns the current State and advances it one
// Update per Step. It is driven from a single goroutine.
type Game struct {
	mode    Mode
	cfg     config.HockeyConfig
	rules   Rules
	state   State
	rng     *rand.Rand
	runtime core.RuntimeConfig
	names   [2]string
	stick   StickType
}

// New creates a game in the given mode with default rules. Reset loads the
// configuration.
func New(mode Mode) *Game {
	cfg := config.DefaultHockeyConfig()
	g := &Game{
		mode:  mode,
		cfg:   cfg,
		rules: RulesFromConfig(cfg),
		rng:   rand.New(rand.NewSource(1)),
		names: [2]string{core.Player1.String(), core.Player2.String()},
	}
	g.state = NewState(g.rules, mode, cfg.Puck.SpeedMultiplier)
	return g
}

// ID returns the registry identifier for the mode.
func (g *Game) ID() string {
	switch g.mode {
	case ModeTwoPlayer:
		return "hockey-2p"
	case ModeOnline:
		return "hockey-online"
	default:
		return "hockey"
	}
}

// Title returns the display name.
func (g *Game) Title() string {
	switch g.mode {
	case ModeTwoPlayer:
		return "Hockey Pong (2 players)"
	case ModeOnline:
		return "Hockey Pong (online)"
	default:
		return "Hockey Pong (vs CPU)"
	}
}

// Reset loads configuration, reseeds the random source and sets up a fresh
// match that is not yet running.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	cfg, err := config.LoadHockey(configPath)
	if err != nil {
		cfg = config.DefaultHockeyConfig()
	}
	config.ApplyHockeyPreset(&cfg, difficultyPreset)
	if cfg.Validate() != nil {
		cfg = config.DefaultHockeyConfig()
	}

	g.cfg = cfg
	g.rules = RulesFromConfig(cfg)
	g.rng = rand.New(rand.NewSource(runtime.Seed))
	g.state = NewState(g.rules, g.mode, cfg.Puck.SpeedMultiplier)
}

// Start sets the match running. A finished match never resumes: starting
// after a win is the explicit reset, so it goes through Restart first and
// the new game keeps the speed multiplier and mode.
func (g *Game) Start() {
	if g.state.Winner != core.PlayerNone {
		g.Restart()
	}
	g.state.Running = true
}

// Pause stops the match without touching anything else.
func (g *Game) Pause() {
	g.state.Running = false
}

// TogglePause starts a stopped match or pauses a running one.
func (g *Game) TogglePause() {
	if g.state.Running {
		g.Pause()
		return
	}
	g.Start()
}

// Restart replaces the match with a fresh one, keeping the speed
// multiplier and mode. The new match is not running.
func (g *Game) Restart() {
	g.state = g.state.Reset(g.rules)
}

// Step runs one Update with the frame's input.
func (g *Game) Step(in core.InputState) core.StepResult {
	next, events := Update(g.rules, g.state, in, g.rng)
	g.state = next
	return core.StepResult{State: next.Status(), Events: events}
}

// State returns the platform summary of the match.
func (g *Game) State() core.GameState {
	return g.state.Status()
}

// Snapshot returns a copy of the full match state.
func (g *Game) Snapshot() State {
	return g.state
}

// ApplySnapshot replaces the match state verbatim.
func (g *Game) ApplySnapshot(s State) {
	g.state = s
}

// Rules returns the active rules.
func (g *Game) Rules() Rules {
	return g.rules
}

// Config returns the loaded configuration.
func (g *Game) Config() config.HockeyConfig {
	return g.cfg
}

// Mode returns who controls the right paddle.
func (g *Game) Mode() Mode {
	return g.mode
}

// SetSpeedMultiplier changes the puck speed multiplier. The puck keeps its
// current velocity until the next paddle hit or relaunch.
func (g *Game) SetSpeedMultiplier(m float64) {
	if m > 0 {
		g.state.SpeedMultiplier = m
	}
}

// SetPlayerNames sets the names shown in the banner. Empty names keep the
// current ones.
func (g *Game) SetPlayerNames(p1, p2 string) {
	if p1 != "" {
		g.names[0] = p1
	}
	if p2 != "" {
		g.names[1] = p2
	}
}

// PlayerName returns the display name of a side.
func (g *Game) PlayerName(side core.PlayerID) string {
	switch side {
	case core.Player1:
		return g.names[0]
	case core.Player2:
		return g.names[1]
	default:
		return ""
	}
}

// SetStick changes how paddles are drawn.
func (g *Game) SetStick(t StickType) {
	g.stick = t
}

// Stick returns the drawn paddle shape.
func (g *Game) Stick() StickType {
	return g.stick
}

// Register the local modes with the registry
func init() {
	registry.Register("hockey", func() registry.Game {
		return New(ModeSinglePlayer)
	})
	registry.Register("hockey-2p", func() registry.Game {
		return New(ModeTwoPlayer)
	})
}
