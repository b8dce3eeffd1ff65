package tui

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

// Command is a non-movement action bound to a key.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdStartPause
	CmdReset
	CmdBack
	CmdScreenshot
	CmdSpeedUp
	CmdSpeedDown
	CmdStick
)

// KeyMapper translates Bubble Tea key messages to game input.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message into either a movement key (W, S, the
// arrows) or a command. Unbound keys yield "" and CmdNone.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (core.Key, Command) {
	switch k := msg.String(); k {
	case "ctrl+c", "q":
		return "", CmdQuit
	case " ", "p":
		return "", CmdStartPause
	case "r", "R":
		return "", CmdReset
	case "esc", "b":
		return "", CmdBack
	case "ctrl+s":
		return "", CmdScreenshot
	case "+", "=":
		return "", CmdSpeedUp
	case "-", "_":
		return "", CmdSpeedDown
	case "g":
		return "", CmdStick
	case "w", "W", "s", "S", "up", "down":
		return core.NormalizeKey(k), CmdNone
	}
	return "", CmdNone
}

// opposite pairs the two directions of each side.
var opposite = map[core.Key]core.Key{
	core.KeyW:         core.KeyS,
	core.KeyS:         core.KeyW,
	core.KeyArrowUp:   core.KeyArrowDown,
	core.KeyArrowDown: core.KeyArrowUp,
}

// DefaultHoldWindow is used when the configured window is not positive.
const DefaultHoldWindow = 150 * time.Millisecond

// HoldTracker emulates key releases. Terminals report presses and auto
// repeats but never releases, so a key counts as held until no repeat
// has arrived for the hold window.
type HoldTracker struct {
	window time.Duration
	last   map[core.Key]time.Time
}

// NewHoldTracker creates a tracker with the given window.
func NewHoldTracker(window time.Duration) *HoldTracker {
	if window <= 0 {
		window = DefaultHoldWindow
	}
	return &HoldTracker{window: window, last: make(map[core.Key]time.Time)}
}

// Press records a press or repeat of k. It reports whether k was not
// held before.
func (h *HoldTracker) Press(k core.Key, now time.Time) bool {
	_, held := h.last[k]
	h.last[k] = now
	return !held
}

// Release forgets k and reports whether it was held.
func (h *HoldTracker) Release(k core.Key) bool {
	_, held := h.last[k]
	delete(h.last, k)
	return held
}

// Expire forgets and returns the keys whose last press is older than the
// window, in a stable order.
func (h *HoldTracker) Expire(now time.Time) []core.Key {
	var expired []core.Key
	for k, t := range h.last {
		if now.Sub(t) >= h.window {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		delete(h.last, k)
	}
	slices.Sort(expired)
	return expired
}

// Reset forgets every key and returns the ones that were held.
func (h *HoldTracker) Reset() []core.Key {
	keys := make([]core.Key, 0, len(h.last))
	for k := range h.last {
		keys = append(keys, k)
	}
	clear(h.last)
	slices.Sort(keys)
	return keys
}

// MouseTouch converts a mouse message on a w x h screen into a touch
// event. A left-button press starts a touch, dragging moves it and any
// release ends every touch. Online games have a single local paddle, so
// the whole rink steers it.
func MouseTouch(msg tea.MouseMsg, rules hockey.Rules, mode hockey.Mode, w, h int) (core.InputEvent, bool) {
	if msg.Action == tea.MouseActionRelease {
		return core.InputEvent{Kind: core.InputTouchEnd, Side: core.PlayerNone}, true
	}
	if msg.Button != tea.MouseButtonLeft {
		return core.InputEvent{}, false
	}

	kind := core.InputTouchStart
	switch msg.Action {
	case tea.MouseActionPress:
	case tea.MouseActionMotion:
		kind = core.InputTouchMove
	default:
		return core.InputEvent{}, false
	}

	fx, fy := rules.ScreenToField(w, h, msg.X, msg.Y)
	side := rules.TouchSide(fx, mode)
	if mode == hockey.ModeOnline {
		side = core.Player1
	}
	if side == core.PlayerNone {
		return core.InputEvent{}, false
	}
	return core.InputEvent{Kind: kind, Side: side, Y: fy}, true
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionScoreboard
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	}
	return MenuActionNone
}
