package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/hockey-pong/internal/hockey"
	"github.com/vovakirdan/hockey-pong/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show the view list sidebar
	sidebarWidth       = 18  // Width of the view list sidebar
	maxRows            = 100 // Max rows to load per view
)

// ScoreView is one page of the match history screen.
type ScoreView int

const (
	ViewRecent ScoreView = iota
	ViewLeaderboard
	ViewOnline
)

var scoreViews = []ScoreView{ViewRecent, ViewLeaderboard, ViewOnline}

// String returns the page title.
func (v ScoreView) String() string {
	switch v {
	case ViewLeaderboard:
		return "Leaderboard"
	case ViewOnline:
		return "Online"
	default:
		return "Recent"
	}
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextView key.Binding
	PrevView key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextView, k.PrevView, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextView, k.PrevView},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next page"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev page"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the match history screen.
type ScoreboardModel struct {
	store       *storage.Store
	view        int // Index into scoreViews
	rows        []table.Row
	summary     string
	loadErr     error
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool // True if user pressed back (not quit)
	showSidebar bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		store:       store,
		keys:        DefaultScoreboardKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.load()
	return m
}

func (m ScoreboardModel) current() ScoreView {
	return scoreViews[m.view]
}

// columns returns the table layout of the current page.
func (m ScoreboardModel) columns() []table.Column {
	avail := m.width - 6
	if m.showSidebar {
		avail -= sidebarWidth + 4
	}

	switch m.current() {
	case ViewLeaderboard:
		return []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: max(avail-22, 12)},
			{Title: "Won", Width: 6},
			{Title: "Lost", Width: 6},
		}
	case ViewOnline:
		return []table.Column{
			{Title: "Date", Width: 12},
			{Title: "Match", Width: max(avail-42, 16)},
			{Title: "Score", Width: 7},
			{Title: "Result", Width: 21},
		}
	default:
		return []table.Column{
			{Title: "Date", Width: 12},
			{Title: "Mode", Width: 9},
			{Title: "Match", Width: max(avail-44, 16)},
			{Title: "Score", Width: 7},
			{Title: "Winner", Width: 12},
		}
	}
}

// load reads the current page from the store and rebuilds the table.
func (m *ScoreboardModel) load() {
	m.rows, m.summary, m.loadErr = nil, "", nil
	if m.store != nil {
		m.rows, m.loadErr = m.queryRows()
		if m.current() == ViewRecent && m.loadErr == nil {
			m.summary = m.modeSummary()
		}
	}

	t := table.New(
		table.WithColumns(m.columns()),
		table.WithRows(m.rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	m.table = t
}

func (m ScoreboardModel) queryRows() ([]table.Row, error) {
	var rows []table.Row

	switch m.current() {
	case ViewLeaderboard:
		standings, err := m.store.Leaderboard(maxRows)
		if err != nil {
			return nil, err
		}
		for i, p := range standings {
			rows = append(rows, table.Row{
				fmt.Sprintf("#%d", i+1),
				p.Name,
				fmt.Sprintf("%d", p.Wins),
				fmt.Sprintf("%d", p.Losses),
			})
		}

	case ViewOnline:
		matches, err := m.store.RecentOnlineMatches(maxRows)
		if err != nil {
			return nil, err
		}
		for _, r := range matches {
			result := r.EndReason
			switch r.WinnerSession {
			case r.Player1Session:
				result = r.Player1Name + " won"
			case r.Player2Session:
				result = r.Player2Name + " won"
			}
			rows = append(rows, table.Row{
				r.CreatedAt.Format("Jan 02 15:04"),
				r.Player1Name + " vs " + r.Player2Name,
				fmt.Sprintf("%d-%d", r.Score1, r.Score2),
				result,
			})
		}

	default:
		matches, err := m.store.RecentMatches(maxRows)
		if err != nil {
			return nil, err
		}
		for _, r := range matches {
			winner := r.WinnerName()
			if winner == "" {
				winner = "-"
			}
			rows = append(rows, table.Row{
				r.CreatedAt.Format("Jan 02 15:04"),
				r.Mode,
				r.Player1 + " vs " + r.Player2,
				fmt.Sprintf("%d-%d", r.Score1, r.Score2),
				winner,
			})
		}
	}

	return rows, nil
}

// modeSummary describes the win split of each local mode.
func (m ScoreboardModel) modeSummary() string {
	var parts []string
	for _, mode := range []hockey.Mode{hockey.ModeSinglePlayer, hockey.ModeTwoPlayer, hockey.ModeOnline} {
		stats, err := m.store.Stats(mode.String())
		if err != nil || stats.Matches == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d played, %d-%d, %d goals",
			mode, stats.Matches, stats.Player1Wins, stats.Player2Wins, stats.Goals))
	}
	return strings.Join(parts, "  |  ")
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextView):
			m.view = (m.view + 1) % len(scoreViews)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.PrevView):
			m.view = (m.view + len(scoreViews) - 1) % len(scoreViews)
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.help.Width = msg.Width
		m.load()
		return m, nil
	}

	// Scrolling and everything else goes to the table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("MATCH HISTORY - "+strings.ToUpper(m.current().String())), m.width))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	if m.summary != "" {
		b.WriteString("\n")
		b.WriteString(centerText(m.summary, m.width))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

// renderWideLayout renders the page list beside the table.
func (m ScoreboardModel) renderWideLayout() string {
	var sidebar strings.Builder
	sidebar.WriteString("Pages\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, v := range scoreViews {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.view {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + v.String()))
		sidebar.WriteString("\n")
	}

	sidebarRendered := boxStyle.Width(sidebarWidth).Render(sidebar.String())
	tableRendered := boxStyle.Render(m.renderTableContent())

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarRendered, "  ", tableRendered)
}

// renderNarrowLayout renders page tabs above the table.
func (m ScoreboardModel) renderNarrowLayout() string {
	var b strings.Builder

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(scoreViews))
	for i, v := range scoreViews {
		if i == m.view {
			tabs[i] = activeTabStyle.Render(v.String())
		} else {
			tabs[i] = tabStyle.Render(" " + v.String() + " ")
		}
	}

	b.WriteString(centerText(strings.Join(tabs, " "), m.width))
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(m.renderTableContent()))

	return b.String()
}

// renderTableContent renders the table or a placeholder.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.store == nil:
		return emptyStyle.Render("Match history is unavailable.")
	case m.loadErr != nil:
		return emptyStyle.Render("Could not load matches:\n" + m.loadErr.Error())
	case len(m.rows) == 0:
		return emptyStyle.Render("No matches recorded yet.\nFinish a match to see it here!")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewScoreboardModel(store, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
