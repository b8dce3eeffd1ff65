// Package multiplayer connects two hockey players over a relay.
//
// The match creator (actor 1, left paddle) is authoritative: it runs the
// simulation and broadcasts full state. Actor 2 sends only its paddle
// position and applies the state it receives. The relay forwards frames
// between the two and never simulates.
package multiplayer

import (
	"context"
	"errors"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

// Sentinel errors returned by Network implementations.
var (
	ErrNotConnected  = errors.New("multiplayer: not connected")
	ErrNotInMatch    = errors.New("multiplayer: not in a match")
	ErrNotConfigured = errors.New("multiplayer: no relay configured")
	ErrBadFrame      = errors.New("multiplayer: malformed frame")
)

// SessionID uniquely identifies a connection to the relay.
type SessionID string

// MatchID uniquely identifies a match.
type MatchID string

// Join modes for MatchOptions.Mode.
const (
	JoinQuick = "quick" // join any open lobby, or open one
	JoinHost  = "host"  // always open a new lobby
	JoinCode  = "code"  // join the lobby with MatchOptions.Code
)

// MatchOptions selects how JoinOrCreateMatch finds an opponent.
type MatchOptions struct {
	Mode string
	Code string
	Name string // Display name sent to the opponent
}

// MatchInfo describes a joined match.
type MatchInfo struct {
	ID           MatchID
	Code         string
	Actor        core.PlayerID // Player1 is authoritative
	OpponentName string
}

// InputPayload is what the non-authoritative peer sends each tick.
type InputPayload struct {
	PaddleY   float64
	Timestamp int64 // Unix milliseconds at the sender
}

// MatchEnd is reported when the relay closes a match.
type MatchEnd struct {
	Reason string
	Winner core.PlayerID
}

// Network is the collaborator a frame driver uses for online play.
type Network interface {
	// Connect opens the connection to the relay.
	Connect(ctx context.Context) error

	// JoinOrCreateMatch blocks until an opponent is found, ctx is done, or
	// the relay refuses.
	JoinOrCreateMatch(ctx context.Context, opts MatchOptions) (MatchInfo, error)

	// LeaveMatch leaves the current match. Leaving when not in a match is a no-op.
	LeaveMatch() error

	// SendInput sends the local paddle position (actor 2).
	SendInput(p InputPayload) error

	// SendState broadcasts the authoritative state (actor 1).
	SendState(s hockey.State) error

	// OnRemoteState registers a handler for states from the authoritative
	// peer. The returned func unregisters it.
	OnRemoteState(h func(hockey.State)) func()

	// OnRemoteInput registers a handler for inputs from actor 2.
	OnRemoteInput(h func(InputPayload)) func()

	// OnWaiting registers a handler called with the lobby code while the
	// relay waits for an opponent.
	OnWaiting(h func(code string)) func()

	// OnMatchEnded registers a handler called when the match closes.
	OnMatchEnded(h func(MatchEnd)) func()

	Connected() bool
	InMatch() bool
	LocalActor() core.PlayerID

	// Close leaves any match and disconnects.
	Close() error
}

// MatchResultSaver is an interface for saving match results.
// This allows the relay to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID        string
	Code           string
	Player1Session string
	Player2Session string
	Player1Name    string
	Player2Name    string
	Score1         int
	Score2         int
	WinnerSession  string
	EndReason      string
	DurationSecs   int
}
