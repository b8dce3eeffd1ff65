package multiplayer

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

// DefaultBroadcastEvery is the number of ticks between state broadcasts:
// 30 Hz at 60 fps.
const DefaultBroadcastEvery = 2

// Peer drives an online-mode hockey.Game for one side of a match.
//
// Actor 1 simulates: the opponent's latest paddle position is fed to
// Update as the right side's touch, and the resulting state is broadcast
// every BroadcastEvery ticks and whenever something happens. Actor 2 only
// steers its own paddle, sends its position every tick and shows the
// newest state it received.
type Peer struct {
	game   *hockey.Game
	net    Network
	actor  core.PlayerID
	every  int
	logger *log.Logger
	now    func() time.Time
	maxY   float64 // Largest paddle y a remote state may carry

	mu         sync.Mutex
	remoteY    float64
	haveRemote bool
	pending    *hockey.State
	ended      *MatchEnd

	ticks    uint64
	lastSent hockey.State
	localY   float64
	unsub    []func()
}

// NewPeer binds game to net for the given side. game should be in
// hockey.ModeOnline. every <= 0 uses DefaultBroadcastEvery.
func NewPeer(game *hockey.Game, net Network, actor core.PlayerID, every int, logger *log.Logger) *Peer {
	if every <= 0 {
		every = DefaultBroadcastEvery
	}
	if logger == nil {
		logger = log.Default()
	}
	p := &Peer{
		game:   game,
		net:    net,
		actor:  actor,
		every:  every,
		logger: logger.WithPrefix("netplay"),
		now:    time.Now,
		maxY:   game.Rules().MaxPaddleY(),
	}
	p.lastSent = game.Snapshot()
	p.localY = p.lastSent.Paddle2.Y

	if actor == core.Player1 {
		p.unsub = append(p.unsub, net.OnRemoteInput(p.handleInput))
	} else {
		p.unsub = append(p.unsub, net.OnRemoteState(p.handleState))
	}
	p.unsub = append(p.unsub, net.OnMatchEnded(p.handleEnded))
	return p
}

func (p *Peer) handleInput(in InputPayload) {
	p.mu.Lock()
	p.remoteY = in.PaddleY
	p.haveRemote = true
	p.mu.Unlock()
}

// handleState queues a remote state for the next follower step. States
// whose paddles lie outside this game's rink are dropped.
func (p *Peer) handleState(s hockey.State) {
	if s.Paddle1.Y < 0 || s.Paddle1.Y > p.maxY || s.Paddle2.Y < 0 || s.Paddle2.Y > p.maxY {
		p.logger.Debug("dropping state with paddles out of bounds", "paddle1", s.Paddle1.Y, "paddle2", s.Paddle2.Y)
		return
	}

	p.mu.Lock()
	p.pending = &s
	p.mu.Unlock()
}

func (p *Peer) handleEnded(e MatchEnd) {
	p.mu.Lock()
	p.ended = &e
	p.mu.Unlock()
}

// Actor returns the side this peer plays.
func (p *Peer) Actor() core.PlayerID {
	return p.actor
}

// Authoritative reports whether this peer runs the simulation.
func (p *Peer) Authoritative() bool {
	return p.actor == core.Player1
}

// Ended returns how the match ended, once the relay has closed it.
func (p *Peer) Ended() (MatchEnd, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended == nil {
		return MatchEnd{}, false
	}
	return *p.ended, true
}

// Step advances one frame with the local player's input. Keys and touches
// of either side steer the local paddle.
func (p *Peer) Step(in core.InputState) core.StepResult {
	if p.Authoritative() {
		return p.stepAuthority(in)
	}
	return p.stepFollower(in)
}

func (p *Peer) stepAuthority(in core.InputState) core.StepResult {
	local := localInput(in, core.Player1)

	p.mu.Lock()
	if p.haveRemote {
		local.SetTouch(core.Player2, p.remoteY+p.game.Rules().PaddleHeight/2)
	}
	p.mu.Unlock()

	res := p.game.Step(local)
	p.ticks++

	s := p.game.Snapshot()
	due := p.ticks%uint64(p.every) == 0 && s != p.lastSent
	changed := s.Running != p.lastSent.Running || s.Winner != p.lastSent.Winner
	if due || changed || len(res.Events) > 0 {
		if err := p.net.SendState(s); err != nil {
			p.logger.Debug("state not sent", "err", err)
		} else {
			p.lastSent = s
		}
	}
	return res
}

func (p *Peer) stepFollower(in core.InputState) core.StepResult {
	prev := p.game.Snapshot()
	next := prev

	p.mu.Lock()
	if p.pending != nil {
		next = *p.pending
		p.pending = nil
	}
	p.mu.Unlock()

	if next.Running {
		p.localY = hockey.SteerPaddle(p.game.Rules(), p.localY, localInput(in, core.Player2), core.Player2)
	}
	next.Paddle2.Y = p.localY
	p.game.ApplySnapshot(next)

	if err := p.net.SendInput(InputPayload{PaddleY: p.localY, Timestamp: p.now().UnixMilli()}); err != nil {
		p.logger.Debug("input not sent", "err", err)
	}

	return core.StepResult{State: next.Status(), Events: diffEvents(prev, next)}
}

// localInput folds both key sets and any touch onto side.
func localInput(in core.InputState, side core.PlayerID) core.InputState {
	out := core.NewInputState()
	up, down := core.KeyW, core.KeyS
	if side == core.Player2 {
		up, down = core.KeyArrowUp, core.KeyArrowDown
	}
	if in.Held(core.KeyW) || in.Held(core.KeyArrowUp) {
		out.Press(up)
	}
	if in.Held(core.KeyS) || in.Held(core.KeyArrowDown) {
		out.Press(down)
	}
	for _, from := range []core.PlayerID{core.Player1, core.Player2} {
		if y, ok := in.Touch(from); ok {
			out.SetTouch(side, y)
		}
	}
	return out
}

// diffEvents reconstructs the events between two received states so the
// follower can play the same sounds as the authority.
func diffEvents(prev, next hockey.State) []core.Event {
	if next.Tick <= prev.Tick {
		return nil
	}
	var events []core.Event
	scored := next.Score != prev.Score
	if !scored {
		if flipped(prev.Puck.DY, next.Puck.DY) {
			events = append(events, core.EventWallBounce)
		}
		if flipped(prev.Puck.DX, next.Puck.DX) {
			events = append(events, core.EventPaddleHit)
		}
	}
	if scored {
		events = append(events, core.EventGoalScored)
	}
	if next.Winner != core.PlayerNone && prev.Winner == core.PlayerNone {
		events = append(events, core.EventMatchWon)
	}
	return events
}

func flipped(a, b float64) bool {
	return (a < 0 && b > 0) || (a > 0 && b < 0)
}

// Close unregisters the peer's handlers. The Network stays open.
func (p *Peer) Close() {
	for _, fn := range p.unsub {
		fn()
	}
	p.unsub = nil
}

// Leave closes the peer and leaves the match, forfeiting it if it is
// still being played.
func (p *Peer) Leave() error {
	p.Close()
	if !p.net.InMatch() {
		return nil
	}
	return p.net.LeaveMatch()
}
