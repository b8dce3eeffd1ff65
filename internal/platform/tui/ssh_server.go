package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/google/uuid"

	"github.com/vovakirdan/hockey-pong/internal/audio"
	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
	"github.com/vovakirdan/hockey-pong/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.hockey/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	TickRate int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
	}
}

// SSHServer serves hockey over SSH. Every session gets its own menu and
// games; online matches between sessions go through a shared relay.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	relay  *multiplayer.Relay
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. store may be nil; relay may be
// nil to hide online play.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, relay *multiplayer.Relay, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		relay:  relay,
		logger: logger.WithPrefix("ssh"),
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".hockey", "host_key")
	}

	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	// Middlewares run last to first: log, require a terminal, then play.
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(srv.logger),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	var network multiplayer.Network = multiplayer.Offline{}
	if s.relay != nil {
		id := multiplayer.SessionID(fmt.Sprintf("%s-%s", sess.User(), uuid.NewString()[:8]))
		client := multiplayer.NewLocalClient(s.relay, id, s.logger)
		if err := client.Connect(sess.Context()); err != nil {
			s.logger.Warn("could not attach session to relay", "user", sess.User(), "error", err)
		} else {
			network = client
			go func() {
				<-sess.Context().Done()
				client.Close()
			}()
		}
	}

	model := NewSessionModel(cfg, SessionOptions{
		Store:    s.store,
		Network:  network,
		Username: sess.User(),
		Logger:   s.logger,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenOnline
	screenScores
)

// SessionOptions holds the collaborators of a SessionModel.
type SessionOptions struct {
	Store    *storage.Store
	Network  multiplayer.Network // Offline hides online play
	Audio    audio.Player
	Username string
	Logger   *log.Logger

	// SaveOnline records online matches in Store as well. A server
	// leaves this off: its relay saves every online result once.
	SaveOnline bool
}

// SessionModel manages the full session flow: menu -> game, online lobby
// or match history -> menu. It is the top-level model of SSH sessions.
type SessionModel struct {
	opts     SessionOptions
	config   core.RuntimeConfig
	screen   sessionScreen
	menu     MenuModel
	game     *GameModel
	online   *OnlineModel
	scores   *ScoreboardModel
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(cfg core.RuntimeConfig, opts SessionOptions) SessionModel {
	if opts.Network == nil {
		opts.Network = multiplayer.Offline{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return SessionModel{
		opts:   opts,
		config: cfg,
		menu:   NewMenuModel(cfg, onlineEnabled(opts.Network)),
	}
}

// onlineEnabled reports whether the menu offers online play.
func onlineEnabled(n multiplayer.Network) bool {
	_, offline := n.(multiplayer.Offline)
	return !offline
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenOnline:
		return m.updateOnline(msg)
	case screenScores:
		return m.updateScores(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}
	m.config = m.menu.Config()

	// The menu quits its own program on selection; here that command is
	// replaced by the next screen's.
	switch selected.Kind {
	case MenuScores:
		sb := NewScoreboardModel(m.opts.Store, m.config.ScreenW, m.config.ScreenH)
		m.scores = &sb
		m.screen = screenScores
		return m, sb.Init()

	case MenuOnline:
		opts := OnlineOptions{
			Network: m.opts.Network,
			Name:    m.opts.Username,
			Audio:   m.opts.Audio,
			Logger:  m.opts.Logger,
		}
		if m.opts.SaveOnline {
			opts.Store = m.opts.Store
		}
		om := NewOnlineModel(m.config, opts)
		m.online = &om
		m.screen = screenOnline
		return m, om.Init()
	}

	game, err := CreateGame(selected.GameID, m.config)
	if err != nil {
		m.opts.Logger.Error("cannot create game", "id", selected.GameID, "error", err)
		return m.backToMenu()
	}
	localNames(game, m.opts.Username)

	gm := NewGameModel(game, m.config, GameOptions{
		Store:  m.opts.Store,
		Audio:  m.opts.Audio,
		Logger: m.opts.Logger,
	})
	m.game = &gm
	m.screen = screenGame
	return m, gm.Init()
}

// localNames sets the banner names of a local game.
func localNames(game *hockey.Game, user string) {
	switch game.Mode() {
	case hockey.ModeSinglePlayer:
		game.SetPlayerNames(user, "Computer")
	case hockey.ModeTwoPlayer:
		game.SetPlayerNames(user, "")
	}
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.game, m.online, m.scores = nil, nil, nil
	m.menu = NewMenuModel(m.config, onlineEnabled(m.opts.Network))
	return m, m.menu.Init()
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.online.Update(msg)
	if om, ok := newModel.(OnlineModel); ok {
		m.online = &om
	}

	if m.online.IsQuitting() {
		m.online.Close()
		m.quitting = true
		return m, tea.Quit
	}
	if m.online.BackToMenu() {
		m.online.Close()
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scores.Update(msg)
	if sb, ok := newModel.(ScoreboardModel); ok {
		m.scores = &sb
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		return m.backToMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.screen == screenGame && m.game != nil:
		return m.game.View()
	case m.screen == screenOnline && m.online != nil:
		return m.online.View()
	case m.screen == screenScores && m.scores != nil:
		return m.scores.View()
	}
	return m.menu.View()
}

// RunSession runs the menu-driven session in the local terminal.
func RunSession(cfg core.RuntimeConfig, opts SessionOptions) error {
	p := tea.NewProgram(
		NewSessionModel(cfg, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
