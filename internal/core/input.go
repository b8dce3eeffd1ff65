package core

import "strings"

// PlayerID identifies a side of the rink. Player1 plays the left paddle.
type PlayerID int

const (
	PlayerNone PlayerID = iota
	Player1
	Player2
)

// String returns a human-readable name for the player.
func (p PlayerID) String() string {
	switch p {
	case Player1:
		return "Player 1"
	case Player2:
		return "Player 2"
	default:
		return "None"
	}
}

// Other returns the opposing side.
func (p PlayerID) Other() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return PlayerNone
	}
}

// Key identifies a held key on the input surface.
type Key string

// Keys the game reacts to. Letters are stored lower-case; NormalizeKey
// folds upper-case variants so W and w are the same held key.
const (
	KeyW         Key = "w"
	KeyS         Key = "s"
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
)

// NormalizeKey maps a raw key identifier onto the canonical Key.
func NormalizeKey(raw string) Key {
	switch raw {
	case "up", "ArrowUp":
		return KeyArrowUp
	case "down", "ArrowDown":
		return KeyArrowDown
	}
	if len(raw) == 1 {
		return Key(strings.ToLower(raw))
	}
	return Key(raw)
}

// touchPoint is an optional Y coordinate for one side.
type touchPoint struct {
	y      float64
	active bool
}

// InputState is the frame driver's view of the input surface: the set of
// held keys plus at most one active touch per side.
type InputState struct {
	held  map[Key]bool
	touch [2]touchPoint
}

// NewInputState creates an empty input state.
func NewInputState() InputState {
	return InputState{held: make(map[Key]bool)}
}

// Press marks a key as held.
func (s *InputState) Press(k Key) {
	if s.held == nil {
		s.held = make(map[Key]bool)
	}
	s.held[NormalizeKey(string(k))] = true
}

// Release marks a key as no longer held.
func (s *InputState) Release(k Key) {
	delete(s.held, NormalizeKey(string(k)))
}

// Held reports whether a key is currently held. W and w are the same key.
func (s InputState) Held(k Key) bool {
	return s.held[NormalizeKey(string(k))]
}

// HeldKeys returns the number of keys currently held.
func (s InputState) HeldKeys() int {
	return len(s.held)
}

// SetTouch records a touch Y (field units) for a side.
func (s *InputState) SetTouch(side PlayerID, y float64) {
	if i, ok := sideIndex(side); ok {
		s.touch[i] = touchPoint{y: y, active: true}
	}
}

// ClearTouch removes the touch for a side.
func (s *InputState) ClearTouch(side PlayerID) {
	if i, ok := sideIndex(side); ok {
		s.touch[i] = touchPoint{}
	}
}

// ClearTouches removes both touches.
func (s *InputState) ClearTouches() {
	s.touch = [2]touchPoint{}
}

// Touch returns the touch Y for a side and whether one is active.
func (s InputState) Touch(side PlayerID) (float64, bool) {
	i, ok := sideIndex(side)
	if !ok || !s.touch[i].active {
		return 0, false
	}
	return s.touch[i].y, true
}

// Clone returns a deep copy.
func (s InputState) Clone() InputState {
	c := NewInputState()
	for k, v := range s.held {
		c.held[k] = v
	}
	c.touch = s.touch
	return c
}

// Apply folds one input event into the state.
func (s *InputState) Apply(evt InputEvent) {
	switch evt.Kind {
	case InputKeyDown:
		s.Press(evt.Key)
	case InputKeyUp:
		s.Release(evt.Key)
	case InputTouchStart, InputTouchMove:
		s.SetTouch(evt.Side, evt.Y)
	case InputTouchEnd:
		if evt.Side == PlayerNone {
			s.ClearTouches()
		} else {
			s.ClearTouch(evt.Side)
		}
	}
}

func sideIndex(side PlayerID) (int, bool) {
	switch side {
	case Player1:
		return 0, true
	case Player2:
		return 1, true
	default:
		return 0, false
	}
}

// InputKind is the type of an input event.
type InputKind int

const (
	InputKeyDown InputKind = iota
	InputKeyUp
	InputTouchStart
	InputTouchMove
	InputTouchEnd
)

// InputEvent is a single change to the input surface.
type InputEvent struct {
	Kind InputKind
	Key  Key
	Side PlayerID // Touch events only; PlayerNone on TouchEnd clears both sides
	Y    float64  // Touch Y in field units
}

// KeyDown builds a key press event.
func KeyDown(k Key) InputEvent { return InputEvent{Kind: InputKeyDown, Key: k} }

// KeyUp builds a key release event.
func KeyUp(k Key) InputEvent { return InputEvent{Kind: InputKeyUp, Key: k} }

// InputQueue serialises input events from a producer goroutine into the
// tick loop. One producer, one consumer.
type InputQueue struct {
	events chan InputEvent
}

// NewInputQueue creates a queue holding up to size pending events.
func NewInputQueue(size int) *InputQueue {
	if size < 1 {
		size = 256
	}
	return &InputQueue{events: make(chan InputEvent, size)}
}

// Push enqueues an event without blocking. Returns false if the queue is full.
func (q *InputQueue) Push(evt InputEvent) bool {
	select {
	case q.events <- evt:
		return true
	default:
		return false
	}
}

// Drain applies every pending event to s in arrival order and returns how
// many were applied. Called once per tick.
func (q *InputQueue) Drain(s *InputState) int {
	n := 0
	for {
		select {
		case evt := <-q.events:
			s.Apply(evt)
			n++
		default:
			return n
		}
	}
}

// Len returns the number of pending events.
func (q *InputQueue) Len() int {
	return len(q.events)
}
