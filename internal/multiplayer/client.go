package multiplayer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

// handlerSet is a set of callbacks that can be removed individually.
type handlerSet[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (h *handlerSet[T]) add(fn func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fns == nil {
		h.fns = make(map[int]func(T))
	}
	id := h.next
	h.next++
	h.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.fns, id)
			h.mu.Unlock()
		})
	}
}

func (h *handlerSet[T]) emit(v T) {
	h.mu.Lock()
	fns := make([]func(T), 0, len(h.fns))
	for _, fn := range h.fns {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

type joinReply struct {
	info MatchInfo
	err  error
}

// clientCore is the transport-independent half of a Network: match
// bookkeeping, ordering and handler dispatch. Transports feed it frames
// through dispatch and provide send.
type clientCore struct {
	logger *log.Logger
	send   func(Frame) error
	seq    Sequencer

	mu        sync.Mutex
	connected bool
	match     *MatchInfo
	joinWait  chan joinReply
	states    SeqFilter
	inputs    SeqFilter

	onState   handlerSet[hockey.State]
	onInput   handlerSet[InputPayload]
	onWaiting handlerSet[string]
	onEnded   handlerSet[MatchEnd]
}

func (c *clientCore) setup(logger *log.Logger, send func(Frame) error) {
	if logger == nil {
		logger = log.Default()
	}
	c.logger = logger.WithPrefix("netplay")
	c.send = send
}

func (c *clientCore) dispatch(f Frame) {
	switch f.Kind {
	case FrameWaiting:
		c.logger.Info("waiting for opponent", "code", f.Code)
		c.onWaiting.emit(f.Code)

	case FrameJoined:
		info := MatchInfo{ID: MatchID(f.Message), Code: f.Code, Actor: f.Actor, OpponentName: f.Name}
		c.mu.Lock()
		c.match = &info
		c.states.Reset()
		c.inputs.Reset()
		w := c.joinWait
		c.joinWait = nil
		c.mu.Unlock()

		c.logger.Info("match joined", "match", info.ID, "actor", info.Actor, "opponent", info.OpponentName)
		if w != nil {
			w <- joinReply{info: info}
		}

	case FrameError:
		c.mu.Lock()
		w := c.joinWait
		c.joinWait = nil
		c.mu.Unlock()

		if w != nil {
			w <- joinReply{err: fmt.Errorf("multiplayer: relay: %s", f.Message)}
			return
		}
		c.logger.Warn("relay error", "message", f.Message)

	case FrameInput:
		if f.Input == nil {
			return
		}
		c.mu.Lock()
		ok := c.match != nil && c.inputs.Accept(f.Seq)
		c.mu.Unlock()
		if ok {
			c.onInput.emit(*f.Input)
		}

	case FrameState:
		if f.State == nil {
			return
		}
		c.mu.Lock()
		ok := c.match != nil && c.states.Accept(f.Seq)
		c.mu.Unlock()
		if ok {
			c.onState.emit(*f.State)
		}

	case FrameEnded:
		c.mu.Lock()
		was := c.match != nil
		c.match = nil
		c.mu.Unlock()

		if was {
			c.logger.Info("match ended", "reason", f.Message, "winner", f.Actor)
			c.onEnded.emit(MatchEnd{Reason: f.Message, Winner: f.Actor})
		}

	default:
		c.logger.Debug("ignoring frame", "kind", f.Kind)
	}
}

func (c *clientCore) setConnected() {
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
}

// disconnected fails a pending join and ends any match.
func (c *clientCore) disconnected() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	had := c.match != nil
	c.match = nil
	w := c.joinWait
	c.joinWait = nil
	c.mu.Unlock()

	if w != nil {
		w <- joinReply{err: ErrNotConnected}
	}
	if had {
		c.onEnded.emit(MatchEnd{Reason: "Connection lost"})
	}
}

// JoinOrCreateMatch asks the relay for an opponent and waits for the pairing.
func (c *clientCore) JoinOrCreateMatch(ctx context.Context, opts MatchOptions) (MatchInfo, error) {
	c.mu.Lock()
	switch {
	case !c.connected:
		c.mu.Unlock()
		return MatchInfo{}, ErrNotConnected
	case c.match != nil || c.joinWait != nil:
		c.mu.Unlock()
		return MatchInfo{}, errors.New("multiplayer: already in a match")
	}
	w := make(chan joinReply, 1)
	c.joinWait = w
	c.mu.Unlock()

	if opts.Mode == "" {
		opts.Mode = JoinQuick
	}
	if err := c.send(Frame{Kind: FrameJoin, Message: opts.Mode, Code: opts.Code, Name: opts.Name}); err != nil {
		c.clearJoin(w)
		return MatchInfo{}, fmt.Errorf("multiplayer: join: %w", err)
	}

	select {
	case reply := <-w:
		return reply.info, reply.err
	case <-ctx.Done():
		c.clearJoin(w)
		// Close the lobby the relay may have opened for us.
		_ = c.send(Frame{Kind: FrameLeave}) //nolint:errcheck // best effort
		return MatchInfo{}, ctx.Err()
	}
}

func (c *clientCore) clearJoin(w chan joinReply) {
	c.mu.Lock()
	if c.joinWait == w {
		c.joinWait = nil
	}
	c.mu.Unlock()
}

// LeaveMatch leaves the current match or lobby.
func (c *clientCore) LeaveMatch() error {
	c.mu.Lock()
	if !c.connected || c.match == nil {
		c.mu.Unlock()
		return nil
	}
	c.match = nil
	c.mu.Unlock()

	if err := c.send(Frame{Kind: FrameLeave}); err != nil {
		return fmt.Errorf("multiplayer: leave: %w", err)
	}
	return nil
}

// SendInput sends the local paddle position to the authoritative peer.
func (c *clientCore) SendInput(p InputPayload) error {
	if err := c.requireMatch(); err != nil {
		return err
	}
	return c.send(Frame{Kind: FrameInput, Seq: c.seq.Next(), Input: &p})
}

// SendState broadcasts the authoritative state.
func (c *clientCore) SendState(s hockey.State) error {
	if err := c.requireMatch(); err != nil {
		return err
	}
	return c.send(Frame{Kind: FrameState, Seq: c.seq.Next(), State: &s})
}

func (c *clientCore) requireMatch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ErrNotConnected
	}
	if c.match == nil {
		return ErrNotInMatch
	}
	return nil
}

func (c *clientCore) OnRemoteState(h func(hockey.State)) func() { return c.onState.add(h) }
func (c *clientCore) OnRemoteInput(h func(InputPayload)) func() { return c.onInput.add(h) }
func (c *clientCore) OnWaiting(h func(string)) func() { return c.onWaiting.add(h) }
func (c *clientCore) OnMatchEnded(h func(MatchEnd)) func() { return c.onEnded.add(h) }

// Connected reports whether the transport is up.
func (c *clientCore) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// InMatch reports whether an opponent has been paired.
func (c *clientCore) InMatch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.match != nil
}

// LocalActor returns the side this client plays, or PlayerNone.
func (c *clientCore) LocalActor() core.PlayerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.match == nil {
		return core.PlayerNone
	}
	return c.match.Actor
}
