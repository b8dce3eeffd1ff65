package tui

import (
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
)

func newTestModel(t *testing.T, id string) GameModel {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 7}
	game, err := CreateGame(id, cfg)
	if err != nil {
		t.Fatalf("CreateGame(%q): %v", id, err)
	}
	return NewGameModel(game, cfg, GameOptions{HoldWindow: 100 * time.Millisecond})
}

func send(t *testing.T, m GameModel, msg tea.Msg) GameModel {
	t.Helper()
	next, _ := m.Update(msg)
	gm, ok := next.(GameModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return gm
}

func TestCreateGameUnknown(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := CreateGame("tetris", core.RuntimeConfig{ScreenW: 80, ScreenH: 24}); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestGameModelHeldKeyMovesPaddle(t *testing.T) {
	m := newTestModel(t, "hockey")
	t0 := time.Unix(5000, 0)
	m.now = func() time.Time { return t0 }

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.game.State().Running {
		t.Fatal("space should start the match")
	}

	y0 := m.game.Snapshot().Paddle1.Y
	m = send(t, m, runeKey('w'))
	m = send(t, m, TickMsg(t0.Add(10*time.Millisecond)))
	y1 := m.game.Snapshot().Paddle1.Y
	if y1 >= y0 {
		t.Fatalf("paddle should move up while w is held: %v -> %v", y0, y1)
	}

	// No repeat arrived within the hold window: the key is released.
	m = send(t, m, TickMsg(t0.Add(200*time.Millisecond)))
	y2 := m.game.Snapshot().Paddle1.Y
	m = send(t, m, TickMsg(t0.Add(220*time.Millisecond)))
	y3 := m.game.Snapshot().Paddle1.Y
	if y2 != y1 || y3 != y2 {
		t.Errorf("paddle kept moving after release: %v, %v, %v", y1, y2, y3)
	}
}

func TestGameModelOppositeKeyReleases(t *testing.T) {
	m := newTestModel(t, "hockey")
	t0 := time.Unix(5000, 0)
	m.now = func() time.Time { return t0 }

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(t, m, runeKey('w'))
	m = send(t, m, runeKey('s'))
	m = send(t, m, TickMsg(t0.Add(10*time.Millisecond)))

	if m.input.Held(core.KeyW) {
		t.Error("pressing s should release w")
	}
	if !m.input.Held(core.KeyS) {
		t.Error("s should be held")
	}
}

func TestGameModelSpeedKeys(t *testing.T) {
	m := newTestModel(t, "hockey")
	before := m.game.Snapshot().SpeedMultiplier

	m = send(t, m, runeKey('+'))
	after := m.game.Snapshot().SpeedMultiplier
	if math.Abs(after-math.Min(before+speedStep, maxSpeed)) > 1e-9 {
		t.Errorf("speed after + = %v, started at %v", after, before)
	}

	for range 40 {
		m = send(t, m, runeKey('-'))
	}
	if got := m.game.Snapshot().SpeedMultiplier; got != minSpeed {
		t.Errorf("speed = %v, expected floor %v", got, minSpeed)
	}
}

func TestGameModelBackOnlyWhenStopped(t *testing.T) {
	m := newTestModel(t, "hockey-2p")

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.BackToMenu() {
		t.Fatal("esc should be ignored while the match runs")
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("esc should go back once paused")
	}
}

func TestGameModelStickToggle(t *testing.T) {
	m := newTestModel(t, "hockey")
	m = send(t, m, runeKey('g'))
	if m.status == "" {
		t.Error("stick toggle should show a status line")
	}
	if m.game.Stick().String() == "" {
		t.Error("stick should have a name")
	}
}

func TestGameModelView(t *testing.T) {
	m := newTestModel(t, "hockey")
	if m.View() == "" {
		t.Error("View should render the rink")
	}

	m = send(t, m, runeKey('q'))
	if !m.IsQuitting() {
		t.Fatal("q should quit")
	}
	if m.View() != "" {
		t.Error("View should be empty after quitting")
	}
}

func TestMenuOnlineEntry(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24}

	offline := NewSessionModel(cfg, SessionOptions{})
	for _, item := range offline.menu.items {
		if item.Kind == MenuOnline {
			t.Error("offline sessions should not offer online play")
		}
	}

	relay := multiplayer.NewRelay(multiplayer.DefaultRelayConfig(), multiplayer.NewSessionRegistry(), nil)
	client := multiplayer.NewLocalClient(relay, "tester", nil)
	online := NewSessionModel(cfg, SessionOptions{Network: client})
	found := false
	for _, item := range online.menu.items {
		if item.Kind == MenuOnline {
			found = true
		}
	}
	if !found {
		t.Error("sessions with a network should offer online play")
	}
}

func TestMenuSelect(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	m := NewMenuModel(core.RuntimeConfig{ScreenW: 80, ScreenH: 24}, false)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(MenuModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(MenuModel)

	sel := m.Selected()
	if sel == nil {
		t.Fatal("enter should select an entry")
	}
	if sel.Kind != MenuPlay || sel.GameID != "hockey-2p" {
		t.Errorf("selected %+v, expected the 2-player mode", *sel)
	}
}
