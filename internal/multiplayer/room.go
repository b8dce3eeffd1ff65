package multiplayer

import (
	"sync"
	"time"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

// MatchResult contains the outcome of a finished room.
type MatchResult struct {
	MatchID  MatchID
	Reason   EndReason
	Winner   core.PlayerID
	Score1   int
	Score2   int
	Ticks    uint64
	Duration time.Duration
}

// Room relays frames between the two peers of a match. It never
// simulates: actor 1's states go to actor 2 and actor 2's inputs go to
// actor 1. The last relayed state decides the result.
type Room struct {
	id      MatchID
	code    string
	player1 SessionHandle
	player2 SessionHandle
	names   [2]string
	started time.Time

	mu   sync.Mutex
	last hockey.State

	frames     chan roomFrame
	leaveChan  chan SessionID
	disconnect chan SessionID
	done       chan struct{}
	doneOnce   sync.Once
}

type roomFrame struct {
	from  SessionID
	frame Frame
}

// NewRoom creates a room for two paired sessions. Call Run to start relaying.
func NewRoom(id MatchID, code string, p1, p2 SessionHandle, name1, name2 string) *Room {
	return &Room{
		id:         id,
		code:       code,
		player1:    p1,
		player2:    p2,
		names:      [2]string{name1, name2},
		started:    time.Now(),
		frames:     make(chan roomFrame, 64),
		leaveChan:  make(chan SessionID, 2),
		disconnect: make(chan SessionID, 2),
		done:       make(chan struct{}),
	}
}

// ID returns the match identifier.
func (m *Room) ID() MatchID {
	return m.id
}

// Code returns the lobby code the room was opened from.
func (m *Room) Code() string {
	return m.code
}

// Actor returns which side a session plays, or PlayerNone.
func (m *Room) Actor(id SessionID) core.PlayerID {
	switch id {
	case m.player1.ID():
		return core.Player1
	case m.player2.ID():
		return core.Player2
	default:
		return core.PlayerNone
	}
}

// Session returns the handle playing a side.
func (m *Room) Session(side core.PlayerID) SessionHandle {
	if side == core.Player2 {
		return m.player2
	}
	return m.player1
}

// LastState returns the most recent state relayed from actor 1.
func (m *Room) LastState() hockey.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Forward queues a frame from one of the peers.
// Non-blocking: when the queue is full the frame is dropped, and the
// next one supersedes it anyway.
func (m *Room) Forward(from SessionID, f Frame) {
	select {
	case m.frames <- roomFrame{from: from, frame: f}:
	default:
	}
}

// PlayerLeft signals that a peer asked to leave.
func (m *Room) PlayerLeft(id SessionID) {
	select {
	case m.leaveChan <- id:
	default:
	}
}

// PlayerDisconnected signals that a peer's transport closed.
func (m *Room) PlayerDisconnected(id SessionID) {
	select {
	case m.disconnect <- id:
	default:
	}
}

// Run relays frames until the match ends.
// The callback is called with the result unless the room was stopped.
func (m *Room) Run(onComplete func(MatchResult)) {
	defer m.Stop()

	go m.monitorSessions()

	for {
		select {
		case rf := <-m.frames:
			if result, ended := m.relay(rf); ended {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case id := <-m.leaveChan:
			if onComplete != nil {
				onComplete(m.forfeit(id, EndLeft))
			}
			return

		case id := <-m.disconnect:
			if onComplete != nil {
				onComplete(m.forfeit(id, EndDisconnect))
			}
			return

		case <-m.done:
			return
		}
	}
}

func (m *Room) relay(rf roomFrame) (MatchResult, bool) {
	f := rf.frame
	switch {
	case f.Kind == FrameInput && f.Input != nil && rf.from == m.player2.ID():
		f.Actor = core.Player2
		m.player1.Send(f)

	case f.Kind == FrameState && f.State != nil && rf.from == m.player1.ID():
		f.Actor = core.Player1
		m.mu.Lock()
		m.last = *f.State
		m.mu.Unlock()
		m.player2.Send(f)

		if f.State.Winner != core.PlayerNone {
			return m.result(EndCompleted, f.State.Winner), true
		}
	}
	return MatchResult{}, false
}

// forfeit ends the match in the opponent's favour.
func (m *Room) forfeit(id SessionID, reason EndReason) MatchResult {
	return m.result(reason, m.Actor(id).Other())
}

func (m *Room) result(reason EndReason, winner core.PlayerID) MatchResult {
	last := m.LastState()
	return MatchResult{
		MatchID:  m.id,
		Reason:   reason,
		Winner:   winner,
		Score1:   last.Score.Player1,
		Score2:   last.Score.Player2,
		Ticks:    last.Tick,
		Duration: time.Since(m.started),
	}
}

func (m *Room) monitorSessions() {
	select {
	case <-m.player1.Done():
		m.PlayerDisconnected(m.player1.ID())
	case <-m.player2.Done():
		m.PlayerDisconnected(m.player2.ID())
	case <-m.done:
	}
}

// Stop ends the relay loop without reporting a result.
func (m *Room) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
