package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/core"
)

// Lobby is a player waiting for an opponent.
type Lobby struct {
	Code      string
	Host      SessionHandle
	HostName  string
	Public    bool // Open to quick-match joiners
	CreatedAt time.Time
}

// RelayConfig holds configuration for the relay.
type RelayConfig struct {
	LobbyTimeout  time.Duration // How long a lobby waits for an opponent
	CleanupPeriod time.Duration // How often to expire lobbies
	TickRate      int           // Simulation rate of the peers, for match durations
}

// DefaultRelayConfig returns sensible defaults.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		LobbyTimeout:  2 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		TickRate:      60,
	}
}

// RelayConfigFrom applies the network section of the game config on top
// of the defaults.
func RelayConfigFrom(n config.NetworkConfig) RelayConfig {
	cfg := DefaultRelayConfig()
	if n.LobbyTimeout > 0 {
		cfg.LobbyTimeout = n.LobbyTimeout
	}
	return cfg
}

// Relay pairs sessions into rooms and forwards frames between them.
type Relay struct {
	config      RelayConfig
	sessions    *SessionRegistry
	logger      *log.Logger
	resultSaver MatchResultSaver // Optional, can be nil

	mu      sync.RWMutex
	lobbies map[string]*Lobby // code -> lobby
	rooms   map[MatchID]*Room // matchID -> room

	sessionLobby map[SessionID]string
	sessionRoom  map[SessionID]MatchID

	msgChan  chan RelayMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewRelay creates a relay. Sessions must be registered in sessions before
// they send messages.
func NewRelay(cfg RelayConfig, sessions *SessionRegistry, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{
		config:       cfg,
		sessions:     sessions,
		logger:       logger.WithPrefix("relay"),
		lobbies:      make(map[string]*Lobby),
		rooms:        make(map[MatchID]*Room),
		sessionLobby: make(map[SessionID]string),
		sessionRoom:  make(map[SessionID]MatchID),
		msgChan:      make(chan RelayMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (r *Relay) SetResultSaver(saver MatchResultSaver) {
	r.resultSaver = saver
}

// Sessions returns the registry the relay resolves session ids against.
func (r *Relay) Sessions() *SessionRegistry {
	return r.sessions
}

// Start begins background processing.
func (r *Relay) Start() {
	go r.processMessages()
	go r.cleanupLoop()
}

// Stop shuts down the relay and every running room.
func (r *Relay) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, room := range r.rooms {
			room.Stop()
		}
	})
}

// Send queues a message for processing.
func (r *Relay) Send(msg RelayMessage) {
	select {
	case r.msgChan <- msg:
	case <-r.done:
	}
}

// Deliver routes a frame received from a session's transport.
// Join frames carry the join mode in Message.
func (r *Relay) Deliver(id SessionID, f Frame) {
	switch f.Kind {
	case FrameJoin:
		r.Send(JoinMsg{SessionID: id, Options: MatchOptions{Mode: f.Message, Code: f.Code, Name: f.Name}})
	case FrameLeave:
		r.Send(LeaveMsg{SessionID: id})
	case FrameInput, FrameState:
		r.Send(ForwardMsg{SessionID: id, Frame: f})
	default:
		r.logger.Debug("ignoring frame", "session", id, "kind", f.Kind)
	}
}

func (r *Relay) processMessages() {
	for {
		select {
		case msg := <-r.msgChan:
			r.handleMessage(msg)
		case <-r.done:
			return
		}
	}
}

func (r *Relay) handleMessage(msg RelayMessage) {
	switch m := msg.(type) {
	case JoinMsg:
		r.handleJoin(m)
	case LeaveMsg:
		r.handleLeave(m)
	case ForwardMsg:
		r.handleForward(m)
	case SessionDisconnectedMsg:
		r.handleSessionDisconnected(m)
	case roomEndedMsg:
		r.handleRoomEnded(m.id, m.result)
	}
}

func (r *Relay) handleJoin(msg JoinMsg) {
	session, ok := r.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, inLobby := r.sessionLobby[msg.SessionID]
	_, inRoom := r.sessionRoom[msg.SessionID]
	if inLobby || inRoom {
		session.Send(Frame{Kind: FrameError, Message: "Already in a match"})
		return
	}

	opts := msg.Options
	switch opts.Mode {
	case JoinCode:
		code := strings.ToUpper(strings.TrimSpace(opts.Code))
		lobby, exists := r.lobbies[code]
		if !exists {
			session.Send(Frame{Kind: FrameError, Code: code, Message: "Lobby not found"})
			return
		}
		if lobby.Host.ID() == msg.SessionID {
			session.Send(Frame{Kind: FrameError, Code: code, Message: "Cannot join your own lobby"})
			return
		}
		r.startRoom(lobby, session, opts.Name)

	case JoinQuick:
		if lobby := r.oldestPublicLobby(); lobby != nil {
			r.startRoom(lobby, session, opts.Name)
			return
		}
		r.openLobby(session, opts.Name, true)

	case JoinHost, "":
		r.openLobby(session, opts.Name, false)

	default:
		session.Send(Frame{Kind: FrameError, Message: fmt.Sprintf("Unknown join mode %q", opts.Mode)})
	}
}

// openLobby must be called with the lock held.
func (r *Relay) openLobby(host SessionHandle, name string, public bool) {
	code := r.generateUniqueCode()
	r.lobbies[code] = &Lobby{
		Code:      code,
		Host:      host,
		HostName:  name,
		Public:    public,
		CreatedAt: time.Now(),
	}
	r.sessionLobby[host.ID()] = code

	r.logger.Info("lobby opened", "code", code, "session", host.ID(), "public", public)
	host.Send(Frame{Kind: FrameWaiting, Code: code})
}

// oldestPublicLobby must be called with the lock held.
func (r *Relay) oldestPublicLobby() *Lobby {
	var open []*Lobby
	for _, l := range r.lobbies {
		if l.Public {
			open = append(open, l)
		}
	}
	if len(open) == 0 {
		return nil
	}
	return slices.MinFunc(open, func(a, b *Lobby) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// startRoom must be called with the lock held.
func (r *Relay) startRoom(lobby *Lobby, joiner SessionHandle, joinerName string) {
	id := MatchID(uuid.NewString())
	room := NewRoom(id, lobby.Code, lobby.Host, joiner, lobby.HostName, joinerName)

	r.rooms[id] = room
	delete(r.lobbies, lobby.Code)
	delete(r.sessionLobby, lobby.Host.ID())
	r.sessionRoom[lobby.Host.ID()] = id
	r.sessionRoom[joiner.ID()] = id

	r.logger.Info("match started", "match", id, "code", lobby.Code,
		"player1", lobby.Host.ID(), "player2", joiner.ID())

	lobby.Host.Send(Frame{Kind: FrameJoined, Actor: core.Player1, Code: lobby.Code, Message: string(id), Name: joinerName})
	joiner.Send(Frame{Kind: FrameJoined, Actor: core.Player2, Code: lobby.Code, Message: string(id), Name: lobby.HostName})

	go room.Run(func(result MatchResult) {
		r.Send(roomEndedMsg{id: id, result: result})
	})
}

func (r *Relay) handleForward(msg ForwardMsg) {
	r.mu.RLock()
	room, ok := r.roomOf(msg.SessionID)
	r.mu.RUnlock()
	if !ok {
		return
	}
	room.Forward(msg.SessionID, msg.Frame)
}

// roomOf must be called with the lock held.
func (r *Relay) roomOf(id SessionID) (*Room, bool) {
	matchID, ok := r.sessionRoom[id]
	if !ok {
		return nil, false
	}
	room, ok := r.rooms[matchID]
	return room, ok
}

func (r *Relay) handleLeave(msg LeaveMsg) {
	session, _ := r.sessions.Get(msg.SessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.sessionLobby[msg.SessionID]; ok {
		delete(r.lobbies, code)
		delete(r.sessionLobby, msg.SessionID)
		r.logger.Info("lobby closed", "code", code, "session", msg.SessionID)
	}
	if room, ok := r.roomOf(msg.SessionID); ok {
		delete(r.sessionRoom, msg.SessionID)
		room.PlayerLeft(msg.SessionID)
	}
	if session != nil {
		session.Send(Frame{Kind: FrameLeft})
	}
}

func (r *Relay) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.sessionLobby[msg.SessionID]; ok {
		delete(r.lobbies, code)
		delete(r.sessionLobby, msg.SessionID)
	}
	if room, ok := r.roomOf(msg.SessionID); ok {
		delete(r.sessionRoom, msg.SessionID)
		room.PlayerDisconnected(msg.SessionID)
	}
}

func (r *Relay) handleRoomEnded(id MatchID, result MatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[id]
	if !exists {
		return
	}
	delete(r.rooms, id)

	r.logger.Info("match ended", "match", id, "reason", result.Reason,
		"winner", result.Winner, "score", fmt.Sprintf("%d-%d", result.Score1, result.Score2))

	if r.resultSaver != nil {
		data := r.resultData(room, result)
		// Best effort save, don't block on error
		go func() {
			if err := r.resultSaver.SaveMatchResult(data); err != nil {
				r.logger.Warn("failed to save match result", "match", id, "err", err)
			}
		}()
	}

	end := Frame{Kind: FrameEnded, Actor: result.Winner, Message: result.Reason.String()}
	for _, side := range []core.PlayerID{core.Player1, core.Player2} {
		s := room.Session(side)
		if r.sessionRoom[s.ID()] != id {
			continue
		}
		delete(r.sessionRoom, s.ID())
		s.Send(end)
	}
}

func (r *Relay) resultData(room *Room, result MatchResult) MatchResultData {
	winner := ""
	if result.Winner != core.PlayerNone {
		winner = string(room.Session(result.Winner).ID())
	}

	secs := int(result.Duration / time.Second)
	if result.Ticks > 0 {
		tickRate := max(1, r.config.TickRate)
		secs = int(result.Ticks / uint64(tickRate)) //nolint:gosec // tickRate is clamped positive
	}

	return MatchResultData{
		MatchID:        string(result.MatchID),
		Code:           room.Code(),
		Player1Session: string(room.Session(core.Player1).ID()),
		Player2Session: string(room.Session(core.Player2).ID()),
		Player1Name:    room.names[0],
		Player2Name:    room.names[1],
		Score1:         result.Score1,
		Score2:         result.Score2,
		WinnerSession:  winner,
		EndReason:      result.Reason.String(),
		DurationSecs:   secs,
	}
}

func (r *Relay) cleanupLoop() {
	ticker := time.NewTicker(r.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanupExpiredLobbies(time.Now())
		case <-r.done:
			return
		}
	}
}

func (r *Relay) cleanupExpiredLobbies(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for code, lobby := range r.lobbies {
		if now.Sub(lobby.CreatedAt) > r.config.LobbyTimeout {
			lobby.Host.Send(Frame{Kind: FrameError, Code: code, Message: "Lobby expired"})
			delete(r.sessionLobby, lobby.Host.ID())
			delete(r.lobbies, code)
		}
	}
}

// generateUniqueCode must be called with the lock held.
func (r *Relay) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := r.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	// base32 yields A-Z and 2-7
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// GetLobby returns a lobby by code.
func (r *Relay) GetLobby(code string) (*Lobby, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lobbies[strings.ToUpper(code)]
	return l, ok
}

// GetRoom returns a running room by id.
func (r *Relay) GetRoom(id MatchID) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rooms[id]
	return m, ok
}

// LobbyCount returns the number of open lobbies.
func (r *Relay) LobbyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

// RoomCount returns the number of running rooms.
func (r *Relay) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
