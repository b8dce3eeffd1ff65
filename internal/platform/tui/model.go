package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/hockey-pong/internal/audio"
	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
	"github.com/vovakirdan/hockey-pong/internal/registry"
	"github.com/vovakirdan/hockey-pong/internal/storage"
)

// Puck speed multiplier bounds for the +/- keys.
const (
	minSpeed  = 0.5
	maxSpeed  = 3.0
	speedStep = 0.25
)

const statusDuration = 2 * time.Second

// GameOptions holds the collaborators of a GameModel. Every field is
// optional.
type GameOptions struct {
	Store      *storage.Store    // Match history; nil disables saving
	Audio      audio.Player      // nil is silent
	Peer       *multiplayer.Peer // Set for online matches
	Logger     *log.Logger
	HoldWindow time.Duration // Defaults to the game's input config
}

// GameModel is the Bubble Tea model that drives one hockey game: it
// turns keys and mouse events into the frame's input, steps the game on
// every tick and hands the step's events to the audio player.
type GameModel struct {
	game   *hockey.Game
	screen *core.Screen
	config core.RuntimeConfig
	store  *storage.Store
	audio  audio.Player
	peer   *multiplayer.Peer
	logger *log.Logger

	keys  *KeyMapper
	hold  *HoldTracker
	queue *core.InputQueue
	input core.InputState
	now   func() time.Time

	state       core.GameState
	ended       *multiplayer.MatchEnd
	status      string
	statusUntil time.Time
	saved       bool
	quitting    bool
	backToMenu  bool
}

// CreateGame looks up a mode in the registry and resets it for cfg.
func CreateGame(id string, cfg core.RuntimeConfig) (*hockey.Game, error) {
	g, err := registry.Create(id)
	if err != nil {
		return nil, err
	}
	game, ok := g.(*hockey.Game)
	if !ok {
		return nil, fmt.Errorf("tui: %q is not a hockey mode", id)
	}
	game.Reset(cfg)
	return game, nil
}

// NewGameModel wraps a game that has already been Reset.
func NewGameModel(game *hockey.Game, cfg core.RuntimeConfig, opts GameOptions) GameModel {
	if opts.Audio == nil {
		opts.Audio = audio.Silent{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.HoldWindow <= 0 {
		opts.HoldWindow = game.Config().Input.HoldWindow
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}

	return GameModel{
		game:   game,
		screen: core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config: cfg,
		store:  opts.Store,
		audio:  opts.Audio,
		peer:   opts.Peer,
		logger: opts.Logger,
		keys:   NewKeyMapper(),
		hold:   NewHoldTracker(opts.HoldWindow),
		queue:  core.NewInputQueue(256),
		input:  core.NewInputState(),
		now:    time.Now,
		state:  game.State(),
	}
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if evt, ok := MouseTouch(msg, m.game.Rules(), m.game.Mode(), m.screen.Width(), m.screen.Height()); ok {
			m.queue.Push(evt)
		}
		return m, nil

	case tea.WindowSizeMsg:
		// Field coordinates do not depend on the terminal size, so the
		// match carries on.
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key, cmd := m.keys.MapKey(msg)
	if key != "" {
		if other, ok := opposite[key]; ok && m.hold.Release(other) {
			m.queue.Push(core.KeyUp(other))
		}
		m.hold.Press(key, m.now())
		m.queue.Push(core.KeyDown(key))
		return m, nil
	}

	switch cmd {
	case CmdQuit:
		m.leave()
		m.quitting = true
		return m, tea.Quit

	case CmdStartPause:
		if m.hasControl() {
			m.game.TogglePause()
			m.state = m.game.State()
		}

	case CmdReset:
		if m.hasControl() {
			m.game.Restart()
			m.state = m.game.State()
			m.saved = false
		}

	case CmdBack:
		if !m.state.Running || m.ended != nil {
			m.leave()
			m.backToMenu = true
		}

	case CmdScreenshot:
		m.saveScreenshot()

	case CmdSpeedUp, CmdSpeedDown:
		if m.peer == nil {
			step := speedStep
			if cmd == CmdSpeedDown {
				step = -speedStep
			}
			speed := core.Clamp(m.game.Snapshot().SpeedMultiplier+step, minSpeed, maxSpeed)
			m.game.SetSpeedMultiplier(speed)
			m.setStatus(fmt.Sprintf("puck speed x%.2f", speed))
		}

	case CmdStick:
		stick := hockey.StickGoalie
		if m.game.Stick() == hockey.StickGoalie {
			stick = hockey.StickNormal
		}
		m.game.SetStick(stick)
		m.setStatus(stick.String() + " sticks")
	}

	return m, nil
}

// hasControl reports whether this side may start, pause and reset the
// match. In online play only the authoritative peer does.
func (m GameModel) hasControl() bool {
	if m.ended != nil {
		return false
	}
	return m.peer == nil || m.peer.Authoritative()
}

// handleTick folds pending input into the frame and advances one step.
func (m GameModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	for _, k := range m.hold.Expire(now) {
		m.queue.Push(core.KeyUp(k))
	}
	m.queue.Drain(&m.input)

	if m.status != "" && now.After(m.statusUntil) {
		m.status = ""
	}

	if m.peer != nil && m.ended == nil {
		if e, ok := m.peer.Ended(); ok {
			m.ended = &e
			m.game.Pause()
			m.logger.Info("online match ended", "reason", e.Reason, "winner", e.Winner)
		}
	}

	var result core.StepResult
	switch {
	case m.ended != nil:
		result = core.StepResult{State: m.game.State()}
	case m.peer != nil:
		result = m.peer.Step(m.input)
	default:
		result = m.game.Step(m.input)
	}
	m.state = result.State

	for _, evt := range result.Events {
		m.audio.Play(evt)
	}

	switch {
	case m.state.GameOver() && !m.saved:
		m.saveMatch()
		m.saved = true
	case !m.state.GameOver():
		m.saved = false
	}

	return m, tickCmd(m.config.TickRate)
}

// saveMatch records the finished match in the history.
func (m *GameModel) saveMatch() {
	if m.store == nil {
		return
	}
	s := m.game.Snapshot()
	_, err := m.store.SaveMatch(storage.MatchRecord{
		Mode:    m.game.Mode().String(),
		Player1: m.game.PlayerName(core.Player1),
		Player2: m.game.PlayerName(core.Player2),
		Score1:  s.Score.Player1,
		Score2:  s.Score.Player2,
		Winner:  s.Winner,
		Ticks:   s.Tick,
	})
	if err != nil {
		m.logger.Warn("could not save match", "error", err)
	}
}

// leave gives up an online match.
func (m *GameModel) leave() {
	if m.peer == nil {
		return
	}
	if err := m.peer.Leave(); err != nil {
		m.logger.Debug("leave match", "error", err)
	}
}

func (m *GameModel) setStatus(s string) {
	m.status = s
	m.statusUntil = m.now().Add(statusDuration)
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".hockey", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("could not create screenshot directory", "error", err)
		return
	}

	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), m.now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("could not save screenshot", "error", err)
		return
	}
	m.setStatus("saved " + filename)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)

	footer := m.status
	switch {
	case m.ended != nil:
		footer = fmt.Sprintf(" %s  |  B menu  Q quit ", m.ended.Reason)
	case footer != "":
		footer = " " + footer + " "
	case m.peer != nil && !m.peer.Authoritative() && !m.state.Running && !m.state.GameOver():
		footer = " waiting for the host to start "
	}
	if footer != "" {
		m.screen.DrawTextCentered(m.screen.Height()-1, footer, core.ColorBrightWhite)
	}

	return RenderScreen(m.screen)
}

// State returns the latest match summary.
func (m GameModel) State() core.GameState {
	return m.state
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Run starts a Bubble Tea program for a single game.
func Run(model GameModel) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(), // Left-button drags steer paddles
	)

	_, err := p.Run()
	return err
}
