package multiplayer

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

// fakeNet records what a Peer sends and lets tests push remote frames.
type fakeNet struct {
	Offline
	states  []hockey.State
	inputs  []InputPayload
	onState handlerSet[hockey.State]
	onInput handlerSet[InputPayload]
	onEnded handlerSet[MatchEnd]
}

func (n *fakeNet) SendState(s hockey.State) error {
	n.states = append(n.states, s)
	return nil
}

func (n *fakeNet) SendInput(p InputPayload) error {
	n.inputs = append(n.inputs, p)
	return nil
}

func (n *fakeNet) OnRemoteState(h func(hockey.State)) func() { return n.onState.add(h) }
func (n *fakeNet) OnRemoteInput(h func(InputPayload)) func() { return n.onInput.add(h) }
func (n *fakeNet) OnMatchEnded(h func(MatchEnd)) func() { return n.onEnded.add(h) }

func newOnlineGame(t *testing.T) *hockey.Game {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	g := hockey.New(hockey.ModeOnline)
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1})
	return g
}

func TestPeerAuthorityAppliesRemotePaddle(t *testing.T) {
	g := newOnlineGame(t)
	net := &fakeNet{}
	p := NewPeer(g, net, core.Player1, 2, quiet)
	defer p.Close()
	g.Start()

	net.onInput.emit(InputPayload{PaddleY: 10})
	p.Step(core.NewInputState())
	if y := g.Snapshot().Paddle2.Y; y != 10 {
		t.Errorf("right paddle y = %v, expected the remote 10", y)
	}

	net.onInput.emit(InputPayload{PaddleY: 10000})
	p.Step(core.NewInputState())
	if y, limit := g.Snapshot().Paddle2.Y, g.Rules().MaxPaddleY(); y != limit {
		t.Errorf("right paddle y = %v, expected clamp to %v", y, limit)
	}
}

func TestPeerAuthorityArrowsMoveOwnPaddle(t *testing.T) {
	g := newOnlineGame(t)
	p := NewPeer(g, &fakeNet{}, core.Player1, 2, quiet)
	defer p.Close()
	g.Start()

	before := g.Snapshot()
	in := core.NewInputState()
	in.Press(core.KeyArrowDown)
	p.Step(in)
	after := g.Snapshot()

	if after.Paddle1.Y != before.Paddle1.Y+g.Rules().PaddleSpeed {
		t.Errorf("left paddle y = %v, expected %v", after.Paddle1.Y, before.Paddle1.Y+g.Rules().PaddleSpeed)
	}
	if after.Paddle2.Y != before.Paddle2.Y {
		t.Error("local keys must not move the remote paddle")
	}
}

func TestPeerBroadcastCadence(t *testing.T) {
	g := newOnlineGame(t)
	net := &fakeNet{}
	p := NewPeer(g, net, core.Player1, 3, quiet)
	defer p.Close()

	// Stopped: nothing changes, nothing is sent.
	for range 6 {
		p.Step(core.NewInputState())
	}
	if len(net.states) != 0 {
		t.Fatalf("sent %d states while stopped", len(net.states))
	}

	g.Start()
	p.Step(core.NewInputState()) // running flag changed
	if len(net.states) != 1 || !net.states[0].Running {
		t.Fatalf("start should broadcast immediately, sent %d", len(net.states))
	}

	for range 9 {
		p.Step(core.NewInputState())
	}
	// ticks 7..16 ran; every third tick (9, 12, 15) broadcasts, unless an
	// event forced extra ones.
	if len(net.states) < 4 {
		t.Errorf("sent %d states over 10 ticks, expected at least 4", len(net.states))
	}
	if len(net.states) > 10 {
		t.Errorf("sent %d states over 10 ticks", len(net.states))
	}
}

func TestPeerBroadcastsOnEvents(t *testing.T) {
	g := newOnlineGame(t)
	net := &fakeNet{}
	p := NewPeer(g, net, core.Player1, 1000, quiet)
	defer p.Close()
	g.Start()
	p.Step(core.NewInputState())
	sent := len(net.states)

	s := g.Snapshot()
	s.Puck = hockey.Puck{X: g.Rules().FieldWidth - 1, Y: 300, DX: 6}
	s.Paddle2.Y = 0
	g.ApplySnapshot(s)

	res := p.Step(core.NewInputState())
	if len(res.Events) == 0 || res.Events[0] != core.EventGoalScored {
		t.Fatalf("events = %v, expected a goal", res.Events)
	}
	if len(net.states) != sent+1 {
		t.Errorf("goal should broadcast, sent %d then %d", sent, len(net.states))
	}
}

func TestPeerFollowerAppliesStateAndSteers(t *testing.T) {
	g := newOnlineGame(t)
	net := &fakeNet{}
	p := NewPeer(g, net, core.Player2, 2, quiet)
	p.now = func() time.Time { return time.UnixMilli(5000) }
	defer p.Close()

	remote := g.Snapshot()
	remote.Running = true
	remote.Tick = 12
	remote.Paddle1.Y = 3
	remote.Paddle2.Y = 250 // stale echo of our paddle
	remote.Puck.X = 111
	net.onState.emit(remote)

	startY := g.Snapshot().Paddle2.Y
	in := core.NewInputState()
	in.Press(core.KeyS)
	p.Step(in)

	got := g.Snapshot()
	if got.Tick != 12 || got.Puck.X != 111 || got.Paddle1.Y != 3 {
		t.Errorf("remote state not applied: %+v", got)
	}
	want := startY + g.Rules().PaddleSpeed
	if got.Paddle2.Y != want {
		t.Errorf("own paddle y = %v, expected %v from local steering", got.Paddle2.Y, want)
	}
	if len(net.inputs) != 1 || net.inputs[0].PaddleY != want || net.inputs[0].Timestamp != 5000 {
		t.Errorf("inputs = %+v", net.inputs)
	}

	// Without a new state the follower keeps showing the last one.
	p.Step(core.NewInputState())
	if g.Snapshot().Tick != 12 || len(net.inputs) != 2 {
		t.Error("follower should hold the last state and keep sending input")
	}
}

func TestPeerFollowerTouch(t *testing.T) {
	g := newOnlineGame(t)
	net := &fakeNet{}
	p := NewPeer(g, net, core.Player2, 2, quiet)
	defer p.Close()

	remote := g.Snapshot()
	remote.Running = true
	remote.Tick = 1
	net.onState.emit(remote)

	in := core.NewInputState()
	in.SetTouch(core.Player1, 200)
	p.Step(in)
	if y := g.Snapshot().Paddle2.Y; y != 200-g.Rules().PaddleHeight/2 {
		t.Errorf("touch should centre the own paddle, y = %v", y)
	}
}

func TestPeerFollowerDropsOutOfBoundsState(t *testing.T) {
	g := newOnlineGame(t)
	net := &fakeNet{}
	p := NewPeer(g, net, core.Player2, 2, quiet)
	defer p.Close()

	limit := g.Rules().MaxPaddleY()
	before := g.Snapshot()

	tests := []struct {
		name   string
		p1, p2 float64
	}{
		{"left above rink", -5000, 100},
		{"left below rink", limit + 1, 100},
		{"right above rink", 100, -1},
		{"right below rink", 100, 1e9},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := before
			bad.Running = true
			bad.Tick = uint64(i + 1)
			bad.Paddle1.Y = tt.p1
			bad.Paddle2.Y = tt.p2
			net.onState.emit(bad)
			p.Step(core.NewInputState())

			got := g.Snapshot()
			if got.Tick != before.Tick || got.Paddle1.Y != before.Paddle1.Y {
				t.Errorf("out-of-bounds state applied: %+v", got)
			}
			if got.Paddle1.Y < 0 || got.Paddle1.Y > limit || got.Paddle2.Y < 0 || got.Paddle2.Y > limit {
				t.Errorf("paddles left the rink: %v, %v", got.Paddle1.Y, got.Paddle2.Y)
			}
		})
	}

	good := before
	good.Running = true
	good.Tick = 42
	good.Paddle1.Y = limit
	net.onState.emit(good)
	p.Step(core.NewInputState())
	if got := g.Snapshot(); got.Tick != 42 || got.Paddle1.Y != limit {
		t.Errorf("in-bounds state not applied: %+v", got)
	}
}

func TestPeerFollowerEvents(t *testing.T) {
	g := newOnlineGame(t)
	net := &fakeNet{}
	p := NewPeer(g, net, core.Player2, 2, quiet)
	defer p.Close()

	base := g.Snapshot()
	base.Running = true
	base.Tick = 1
	base.Puck.DX, base.Puck.DY = 6, 6
	net.onState.emit(base)
	p.Step(core.NewInputState())

	bounce := base
	bounce.Tick = 3
	bounce.Puck.DY = -6
	net.onState.emit(bounce)
	if res := p.Step(core.NewInputState()); len(res.Events) != 1 || res.Events[0] != core.EventWallBounce {
		t.Errorf("events = %v, expected wall bounce", res.Events)
	}

	won := bounce
	won.Tick = 5
	won.Score.Player1 = 10
	won.Winner = core.Player1
	won.Running = false
	net.onState.emit(won)
	res := p.Step(core.NewInputState())
	if len(res.Events) != 2 || res.Events[0] != core.EventGoalScored || res.Events[1] != core.EventMatchWon {
		t.Errorf("events = %v, expected goal then win", res.Events)
	}
	if !res.State.GameOver() {
		t.Error("follower should report the win")
	}
}

func TestPeerEnded(t *testing.T) {
	g := newOnlineGame(t)
	net := &fakeNet{}
	p := NewPeer(g, net, core.Player1, 2, quiet)

	if _, ok := p.Ended(); ok {
		t.Fatal("match should not be over yet")
	}
	net.onEnded.emit(MatchEnd{Reason: EndDisconnect.String(), Winner: core.Player1})
	e, ok := p.Ended()
	if !ok || e.Winner != core.Player1 {
		t.Errorf("Ended = %+v, %v", e, ok)
	}

	p.Close()
	net.onInput.emit(InputPayload{PaddleY: 1})
	if p.haveRemote {
		t.Error("closed peer still receives input")
	}
}

// TestPeersOverRelay plays a short match between two peers through an
// in-process relay.
func TestPeersOverRelay(t *testing.T) {
	relay := newTestRelay(t)
	hostNet := NewLocalClient(relay, "host", quiet)
	guestNet := NewLocalClient(relay, "guest", quiet)
	for _, c := range []*LocalClient{hostNet, guestNet} {
		if err := c.Connect(context.Background()); err != nil {
			t.Fatal(err)
		}
		defer c.Close()
	}
	joinPair(t, hostNet, guestNet)

	hostGame := newOnlineGame(t)
	guestGame := newOnlineGame(t)
	host := NewPeer(hostGame, hostNet, core.Player1, 1, quiet)
	guest := NewPeer(guestGame, guestNet, core.Player2, 1, quiet)
	defer host.Close()
	defer guest.Close()

	hostGame.Start()
	down := core.NewInputState()
	down.Press(core.KeyArrowDown)

	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		host.Step(core.NewInputState())
		guest.Step(down)
		time.Sleep(time.Millisecond)
		if guestGame.Snapshot().Tick > 20 && hostGame.Snapshot().Paddle2.Y == guestGame.Snapshot().Paddle2.Y &&
			guestGame.Snapshot().Paddle2.Y == hostGame.Rules().MaxPaddleY() {
			return
		}
	}
	t.Fatalf("peers did not converge: host %+v guest %+v", hostGame.Snapshot(), guestGame.Snapshot())
}
