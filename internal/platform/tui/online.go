package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/hockey-pong/internal/audio"
	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
	"github.com/vovakirdan/hockey-pong/internal/storage"
)

// OnlineState represents the current state of the online matchmaking flow.
type OnlineState int

const (
	OnlineStateConnecting    OnlineState = iota // Dialing the relay
	OnlineStateChooseMode                       // Quick, Host or Join
	OnlineStateJoinEnterCode                    // Entering join code
	OnlineStateWaiting                          // Join sent, waiting for an opponent
	OnlineStateInMatch                          // Playing
)

const connectTimeout = 10 * time.Second

// OnlineOptions holds the collaborators of the online flow.
type OnlineOptions struct {
	Network        multiplayer.Network
	Name           string // Shown to the opponent
	Store          *storage.Store
	Audio          audio.Player
	Logger         *log.Logger
	BroadcastEvery int
	QuitOnBack     bool // Leaving the lobby ends the program

	// Join skips the mode picker and joins right after connecting.
	Join *multiplayer.MatchOptions
}

type onlineChoice struct {
	title string
	mode  string
}

var onlineChoices = []onlineChoice{
	{"Quick match", multiplayer.JoinQuick},
	{"Host a private game", multiplayer.JoinHost},
	{"Join with a code", multiplayer.JoinCode},
}

type connectedMsg struct{ err error }

type lobbyCodeMsg struct{ code string }

type joinResultMsg struct {
	attempt int
	info    multiplayer.MatchInfo
	err     error
}

// OnlineModel runs matchmaking against a multiplayer.Network and then the
// match itself.
type OnlineModel struct {
	state     OnlineState
	width     int
	height    int
	config    core.RuntimeConfig
	opts      OnlineOptions
	keyMapper *KeyMapper
	cursor    int

	// Lobby state
	lobbyCode     string
	joinCodeInput string
	joinError     string
	codes         chan string
	attempt       int
	cancelJoin    context.CancelFunc
	unsubWaiting  func()

	game       *GameModel
	backToMenu bool
	quitting   bool
}

// NewOnlineModel creates the online flow. The network is connected by
// Init unless it already is.
func NewOnlineModel(cfg core.RuntimeConfig, opts OnlineOptions) OnlineModel {
	if opts.Network == nil {
		opts.Network = multiplayer.Offline{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Name == "" {
		opts.Name = "You"
	}

	codes := make(chan string, 4)
	unsub := opts.Network.OnWaiting(func(code string) {
		select {
		case codes <- code:
		default:
		}
	})

	state := OnlineStateConnecting
	if opts.Network.Connected() {
		state = OnlineStateChooseMode
	}

	return OnlineModel{
		state:        state,
		width:        cfg.ScreenW,
		height:       cfg.ScreenH,
		config:       cfg,
		opts:         opts,
		keyMapper:    NewKeyMapper(),
		codes:        codes,
		unsubWaiting: unsub,
	}
}

// Init connects to the relay if needed.
func (m OnlineModel) Init() tea.Cmd {
	if m.state != OnlineStateConnecting {
		if m.opts.Join != nil {
			return func() tea.Msg { return connectedMsg{} }
		}
		return nil
	}
	network := m.opts.Network
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		return connectedMsg{err: network.Connect(ctx)}
	}
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	if m.state == OnlineStateInMatch && m.game != nil {
		return m.updateMatch(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		m.state = OnlineStateChooseMode
		if msg.err != nil {
			m.joinError = connectError(msg.err)
			m.opts.Logger.Warn("could not connect to relay", "error", msg.err)
			return m, nil
		}
		if join := m.opts.Join; join != nil {
			m.opts.Join = nil
			opts := *join
			if opts.Name == "" {
				opts.Name = m.opts.Name
			}
			return m.startJoin(opts)
		}
		return m, nil

	case lobbyCodeMsg:
		if m.state == OnlineStateWaiting {
			m.lobbyCode = msg.code
		}
		return m, nil

	case joinResultMsg:
		return m.handleJoinResult(msg)
	}

	return m, nil
}

func connectError(err error) string {
	if errors.Is(err, multiplayer.ErrNotConfigured) {
		return "Online play is not configured (set --relay or HOCKEY_RELAY_URL)"
	}
	return "Cannot reach the relay: " + err.Error()
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateConnecting:
		if msg.String() == "esc" || msg.String() == "q" {
			return m.back()
		}
	case OnlineStateChooseMode:
		return m.handleChooseModeKey(msg)
	case OnlineStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	case OnlineStateWaiting:
		if msg.String() == "esc" || msg.String() == "b" {
			m.cancel()
			m.state = OnlineStateChooseMode
		}
	}

	return m, nil
}

func (m OnlineModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1", "2", "3":
		m.cursor = int(msg.String()[0] - '1')
		return m.choose()
	}

	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(onlineChoices)-1 {
			m.cursor++
		}
	case MenuActionSelect:
		return m.choose()
	case MenuActionBack:
		return m.back()
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m OnlineModel) back() (tea.Model, tea.Cmd) {
	m.cancel()
	m.backToMenu = true
	if m.opts.QuitOnBack {
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineModel) choose() (tea.Model, tea.Cmd) {
	if !m.opts.Network.Connected() {
		m.state = OnlineStateConnecting
		m.joinError = ""
		return m, m.Init()
	}

	choice := onlineChoices[m.cursor]
	if choice.mode == multiplayer.JoinCode {
		m.state = OnlineStateJoinEnterCode
		m.joinCodeInput = ""
		m.joinError = ""
		return m, nil
	}
	return m.startJoin(multiplayer.MatchOptions{Mode: choice.mode, Name: m.opts.Name})
}

func (m OnlineModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		m.state = OnlineStateChooseMode
		return m, nil
	case "enter":
		if m.joinCodeInput != "" {
			return m.startJoin(multiplayer.MatchOptions{
				Mode: multiplayer.JoinCode,
				Code: m.joinCodeInput,
				Name: m.opts.Name,
			})
		}
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		if len(key) == 1 && len(m.joinCodeInput) < 6 {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.joinCodeInput += c
			}
		}
	}

	return m, nil
}

// startJoin sends the join request. The relay answers with a lobby code
// (through OnWaiting) when no opponent is there yet.
func (m OnlineModel) startJoin(opts multiplayer.MatchOptions) (tea.Model, tea.Cmd) {
	m.cancel()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelJoin = cancel
	m.attempt++
	m.state = OnlineStateWaiting
	m.lobbyCode = ""
	m.joinCodeInput = opts.Code
	m.joinError = ""

	network, attempt, codes := m.opts.Network, m.attempt, m.codes
	join := func() tea.Msg {
		info, err := network.JoinOrCreateMatch(ctx, opts)
		return joinResultMsg{attempt: attempt, info: info, err: err}
	}
	waitCode := func() tea.Msg {
		select {
		case code := <-codes:
			return lobbyCodeMsg{code: code}
		case <-ctx.Done():
			return nil
		}
	}
	return m, tea.Batch(join, waitCode)
}

func (m *OnlineModel) cancel() {
	if m.cancelJoin != nil {
		m.cancelJoin()
		m.cancelJoin = nil
	}
}

func (m OnlineModel) handleJoinResult(msg joinResultMsg) (tea.Model, tea.Cmd) {
	if msg.attempt != m.attempt {
		return m, nil
	}
	m.cancel()

	if msg.err != nil {
		if !errors.Is(msg.err, context.Canceled) {
			m.joinError = msg.err.Error()
			m.state = OnlineStateChooseMode
		}
		return m, nil
	}

	info := msg.info
	m.opts.Logger.Info("match joined", "match", info.ID, "actor", info.Actor, "opponent", info.OpponentName)

	game := hockey.New(hockey.ModeOnline)
	game.Reset(m.config)
	if info.Actor == core.Player1 {
		game.SetPlayerNames(m.opts.Name, info.OpponentName)
	} else {
		game.SetPlayerNames(info.OpponentName, m.opts.Name)
	}

	every := m.opts.BroadcastEvery
	if every <= 0 {
		every = game.Config().Network.BroadcastEvery
	}
	peer := multiplayer.NewPeer(game, m.opts.Network, info.Actor, every, m.opts.Logger)

	gm := NewGameModel(game, m.config, GameOptions{
		Store:  m.opts.Store,
		Audio:  m.opts.Audio,
		Peer:   peer,
		Logger: m.opts.Logger,
	})
	m.game = &gm
	m.state = OnlineStateInMatch
	m.lobbyCode = ""
	return m, gm.Init()
}

// updateMatch forwards messages to the running match.
func (m OnlineModel) updateMatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gm, ok := newModel.(GameModel); ok {
		m.game = &gm
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		m.game = nil
		m.state = OnlineStateChooseMode
		return m, nil
	}
	return m, cmd
}

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateInMatch:
		if m.game != nil {
			return m.game.View()
		}
	case OnlineStateConnecting:
		return m.viewConnecting()
	case OnlineStateJoinEnterCode:
		return m.viewJoinEnterCode()
	case OnlineStateWaiting:
		return m.viewWaiting()
	}
	return m.viewChooseMode()
}

func (m OnlineModel) viewConnecting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("ONLINE HOCKEY", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Connecting to the relay...", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Esc: Back", m.width))

	return b.String()
}

func (m OnlineModel) viewChooseMode() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("ONLINE HOCKEY", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Playing as %s", m.opts.Name), m.width))
	b.WriteString("\n\n")

	for i, c := range onlineChoices {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s[%d] %s", cursor, i+1, c.title), m.width))
		b.WriteString("\n")
	}

	if m.joinError != "" {
		b.WriteString("\n")
		b.WriteString(centerText(fmt.Sprintf("Error: %s", m.joinError), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Enter: Select  |  Esc: Back  |  Q: Quit", m.width))

	return b.String()
}

func (m OnlineModel) viewJoinEnterCode() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("JOIN GAME", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Enter the game code:", m.width))
	b.WriteString("\n\n")

	codeDisplay := m.joinCodeInput
	if len(codeDisplay) < 6 {
		codeDisplay += "_" + strings.Repeat(" ", 5-len(m.joinCodeInput))
	}
	b.WriteString(centerText(fmt.Sprintf("[ %s ]", codeDisplay), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Enter: Connect  |  Esc: Back", m.width))

	return b.String()
}

func (m OnlineModel) viewWaiting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("WAITING FOR AN OPPONENT", m.width))
	b.WriteString("\n\n")
	if m.lobbyCode != "" {
		b.WriteString(centerText("Share this code with your opponent:", m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText(fmt.Sprintf("[ %s ]", m.lobbyCode), m.width))
	} else if m.joinCodeInput != "" {
		b.WriteString(centerText(fmt.Sprintf("Joining game: %s", m.joinCodeInput), m.width))
	} else {
		b.WriteString(centerText("Looking for a match...", m.width))
	}
	b.WriteString("\n\n")
	b.WriteString(centerText("Esc: Cancel", m.width))

	return b.String()
}

// State returns the current online state.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// LobbyCode returns the code of the lobby being waited in.
func (m OnlineModel) LobbyCode() string {
	return m.lobbyCode
}

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}

// Close cancels a pending join and drops the lobby handler. The network
// itself belongs to the caller.
func (m *OnlineModel) Close() {
	m.cancel()
	if m.unsubWaiting != nil {
		m.unsubWaiting()
		m.unsubWaiting = nil
	}
}

// RunOnline runs the online flow as its own program.
func RunOnline(cfg core.RuntimeConfig, opts OnlineOptions) error {
	opts.QuitOnBack = true
	model := NewOnlineModel(cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if m, ok := final.(OnlineModel); ok {
		m.Close()
	} else {
		model.Close()
	}
	return err
}
