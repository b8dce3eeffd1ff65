package multiplayer

// EndReason describes why a match ended.
type EndReason int

const (
	EndCompleted  EndReason = iota // A relayed state carried a winner
	EndDisconnect                  // A peer's connection dropped
	EndLeft                        // A peer left the match
	EndShutdown                    // The relay stopped
)

func (r EndReason) String() string {
	switch r {
	case EndCompleted:
		return "Match completed"
	case EndDisconnect:
		return "Opponent disconnected"
	case EndLeft:
		return "Opponent left"
	case EndShutdown:
		return "Relay shut down"
	default:
		return "Unknown"
	}
}

// RelayMessage is a request from a session to the relay.
type RelayMessage interface {
	relayMessage()
}

// JoinMsg asks the relay to put a session in a lobby.
type JoinMsg struct {
	SessionID SessionID
	Options   MatchOptions
}

func (JoinMsg) relayMessage() {}

// LeaveMsg removes a session from its lobby or match.
type LeaveMsg struct {
	SessionID SessionID
}

func (LeaveMsg) relayMessage() {}

// ForwardMsg carries an Input or State frame to the session's opponent.
type ForwardMsg struct {
	SessionID SessionID
	Frame     Frame
}

func (ForwardMsg) relayMessage() {}

// SessionDisconnectedMsg is sent when a session's transport closes.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) relayMessage() {}

// roomEndedMsg is posted by a room's goroutine when it finishes.
type roomEndedMsg struct {
	id     MatchID
	result MatchResult
}

func (roomEndedMsg) relayMessage() {}
