package tui

import (
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		key  core.Key
		cmd  Command
	}{
		{"w", runeKey('w'), core.KeyW, CmdNone},
		{"upper S", runeKey('S'), core.KeyS, CmdNone},
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, core.KeyArrowUp, CmdNone},
		{"arrow down", tea.KeyMsg{Type: tea.KeyDown}, core.KeyArrowDown, CmdNone},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, "", CmdStartPause},
		{"p", runeKey('p'), "", CmdStartPause},
		{"r", runeKey('r'), "", CmdReset},
		{"q", runeKey('q'), "", CmdQuit},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, "", CmdQuit},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, "", CmdBack},
		{"plus", runeKey('+'), "", CmdSpeedUp},
		{"minus", runeKey('-'), "", CmdSpeedDown},
		{"g", runeKey('g'), "", CmdStick},
		{"unbound", runeKey('x'), "", CmdNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, cmd := km.MapKey(tt.msg)
			if key != tt.key || cmd != tt.cmd {
				t.Errorf("MapKey = (%q, %v), expected (%q, %v)", key, cmd, tt.key, tt.cmd)
			}
		})
	}
}

func TestHoldTracker(t *testing.T) {
	h := NewHoldTracker(100 * time.Millisecond)
	t0 := time.Unix(1000, 0)

	if !h.Press(core.KeyW, t0) {
		t.Error("first press should report a new hold")
	}
	if h.Press(core.KeyW, t0.Add(50*time.Millisecond)) {
		t.Error("repeat should not report a new hold")
	}
	h.Press(core.KeyArrowUp, t0)

	if got := h.Expire(t0.Add(120 * time.Millisecond)); !slices.Equal(got, []core.Key{core.KeyArrowUp}) {
		t.Errorf("Expire = %v, expected only ArrowUp", got)
	}
	if got := h.Expire(t0.Add(150 * time.Millisecond)); !slices.Equal(got, []core.Key{core.KeyW}) {
		t.Errorf("Expire = %v, expected only w", got)
	}
	if got := h.Expire(t0.Add(time.Hour)); len(got) != 0 {
		t.Errorf("Expire = %v, expected nothing held", got)
	}

	h.Press(core.KeyS, t0)
	if !h.Release(core.KeyS) {
		t.Error("Release should report a held key")
	}
	if h.Release(core.KeyS) {
		t.Error("second Release should report nothing held")
	}

	h.Press(core.KeyS, t0)
	h.Press(core.KeyW, t0)
	if got := h.Reset(); !slices.Equal(got, []core.Key{core.KeyS, core.KeyW}) {
		t.Errorf("Reset = %v", got)
	}
}

func TestHoldTrackerDefaultWindow(t *testing.T) {
	h := NewHoldTracker(0)
	if h.window != DefaultHoldWindow {
		t.Errorf("window = %v, expected %v", h.window, DefaultHoldWindow)
	}
}

func TestMouseTouch(t *testing.T) {
	const w, h = 80, 24
	rules := hockey.DefaultRules()
	rink := hockey.RinkRect(w, h)
	left := rink.X + 2
	right := rink.X + rink.W - 2
	midY := rink.Y + rink.H/2

	press := func(x int) tea.MouseMsg {
		return tea.MouseMsg{X: x, Y: midY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	}

	tests := []struct {
		name string
		msg  tea.MouseMsg
		mode hockey.Mode
		ok   bool
		kind core.InputKind
		side core.PlayerID
	}{
		{"left half 1p", press(left), hockey.ModeSinglePlayer, true, core.InputTouchStart, core.Player1},
		{"right half 1p", press(right), hockey.ModeSinglePlayer, false, 0, 0},
		{"right half 2p", press(right), hockey.ModeTwoPlayer, true, core.InputTouchStart, core.Player2},
		{"right half online", press(right), hockey.ModeOnline, true, core.InputTouchStart, core.Player1},
		{
			"drag",
			tea.MouseMsg{X: left, Y: midY, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
			hockey.ModeTwoPlayer, true, core.InputTouchMove, core.Player1,
		},
		{
			"release",
			tea.MouseMsg{X: right, Y: midY, Action: tea.MouseActionRelease},
			hockey.ModeTwoPlayer, true, core.InputTouchEnd, core.PlayerNone,
		},
		{
			"right button",
			tea.MouseMsg{X: left, Y: midY, Action: tea.MouseActionPress, Button: tea.MouseButtonRight},
			hockey.ModeTwoPlayer, false, 0, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, ok := MouseTouch(tt.msg, rules, tt.mode, w, h)
			if ok != tt.ok {
				t.Fatalf("ok = %v, expected %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if evt.Kind != tt.kind || evt.Side != tt.side {
				t.Errorf("event = %+v, expected kind %v side %v", evt, tt.kind, tt.side)
			}
		})
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{runeKey('k'), MenuActionUp},
		{tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionScoreboard},
		{runeKey('q'), MenuActionQuit},
		{runeKey('z'), MenuActionNone},
	}

	for _, tt := range tests {
		if got := km.MapKeyToMenuAction(tt.msg); got != tt.want {
			t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
		}
	}
}
