package hockey

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/vovakirdan/hockey-pong/internal/core"
)

// fixedRand always returns v and counts draws.
type fixedRand struct {
	v     float64
	draws int
}

func (f *fixedRand) Float64() float64 {
	f.draws++
	return f.v
}

func runningState(r Rules, mode Mode) State {
	s := NewState(r, mode, 1)
	s.Running = true
	return s
}

func TestNewState(t *testing.T) {
	r := DefaultRules()
	s := NewState(r, ModeSinglePlayer, 1)

	if s.Puck.X != 400 || s.Puck.Y != 200 {
		t.Errorf("puck at (%v,%v), expected (400,200)", s.Puck.X, s.Puck.Y)
	}
	if s.Paddle1.Y != 160 || s.Paddle2.Y != 160 {
		t.Errorf("paddles at %v/%v, expected 160", s.Paddle1.Y, s.Paddle2.Y)
	}
	if s.Paddle1.X != 20 || s.Paddle2.X != 765 {
		t.Errorf("paddle x = %v/%v, expected 20/765", s.Paddle1.X, s.Paddle2.X)
	}
	if s.Running || s.Winner != core.PlayerNone || s.Celebrating {
		t.Error("new state should be stopped with no winner")
	}
	if s.Score != (Score{}) {
		t.Errorf("score = %+v, expected 0-0", s.Score)
	}
}

func TestResetKeepsModeAndSpeed(t *testing.T) {
	r := DefaultRules()
	s := NewState(r, ModeTwoPlayer, 1.5)
	s.Score = Score{Player1: 3, Player2: 10}
	s.Winner = core.Player2
	s.Celebrating = true

	got := s.Reset(r)
	if got.Mode != ModeTwoPlayer || got.SpeedMultiplier != 1.5 {
		t.Errorf("Reset lost mode/speed: %v %v", got.Mode, got.SpeedMultiplier)
	}
	if got.Score != (Score{}) || got.Winner != core.PlayerNone || got.Celebrating {
		t.Errorf("Reset did not clear the match: %+v", got)
	}
	if got.Puck.DX != 9 {
		t.Errorf("puck DX = %v, expected 9 at 1.5x", got.Puck.DX)
	}
}

func TestUpdateStoppedIsIdentity(t *testing.T) {
	r := DefaultRules()
	s := NewState(r, ModeSinglePlayer, 1)
	in := core.NewInputState()
	in.Press(core.KeyS)
	rng := &fixedRand{v: 0.5}

	got, events := Update(r, s, in, rng)
	if got != s {
		t.Errorf("Update on stopped state changed it:\n got %+v\nwant %+v", got, s)
	}
	if len(events) != 0 {
		t.Errorf("events = %v, expected none", events)
	}
	if rng.draws != 0 {
		t.Errorf("stopped update drew %d random numbers", rng.draws)
	}
}

func TestScoreWithoutPaddleInPath(t *testing.T) {
	r := DefaultRules()
	s := runningState(r, ModeTwoPlayer)
	s.Puck = Puck{X: 400, Y: 200, DX: 6, DY: 0}
	s.Paddle2.Y = 0
	in := core.NewInputState()
	rng := &fixedRand{v: 0.5}

	for i := 1; i < 67; i++ {
		s, _ = Update(r, s, in, rng)
		if s.Score.Player1 != 0 {
			t.Fatalf("scored early at step %d (x=%v)", i, s.Puck.X)
		}
	}

	s, events := Update(r, s, in, rng)
	if s.Score.Player1 != 1 {
		t.Fatalf("player 1 score = %d after 67 steps, expected 1", s.Score.Player1)
	}
	if !slices.Contains(events, core.EventGoalScored) {
		t.Errorf("events = %v, expected goalScored", events)
	}
	if s.Puck.X != 400 || s.Puck.Y != 200 {
		t.Errorf("puck not recentred: (%v,%v)", s.Puck.X, s.Puck.Y)
	}
	if s.Puck.DX >= 0 {
		t.Errorf("relaunch DX = %v, expected negative", s.Puck.DX)
	}
	if !s.Running {
		t.Error("match should keep running below the win score")
	}
}

func TestRelaunchDirection(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name    string
		puck    Puck
		scorer  core.PlayerID
		wantDX  float64
		wantDY  float64
		randVal float64
	}{
		{"player 1 goal", Puck{X: 798, Y: 300, DX: 6}, core.Player1, -6, 1.5, 0.75},
		{"player 2 goal", Puck{X: 2, Y: 300, DX: -6}, core.Player2, 6, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := runningState(r, ModeTwoPlayer)
			s.Puck = tt.puck
			rng := &fixedRand{v: tt.randVal}

			got, _ := Update(r, s, core.NewInputState(), rng)
			if got.Score.Of(tt.scorer) != 1 {
				t.Fatalf("score = %+v, expected %v to score", got.Score, tt.scorer)
			}
			if got.Puck.DX != tt.wantDX || got.Puck.DY != tt.wantDY {
				t.Errorf("relaunch velocity = (%v,%v), expected (%v,%v)",
					got.Puck.DX, got.Puck.DY, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestPaddleDeflection(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name   string
		puckY  float64
		wantDY float64
	}{
		{"centre", 200, 0},
		{"top edge", 160, -0.5 * 6 * 1.5},
		{"bottom edge", 240, 0.5 * 6 * 1.5},
		{"above paddle clamps", 150, -0.5 * 6 * 1.5},
		{"below paddle clamps", 250, 0.5 * 6 * 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := runningState(r, ModeTwoPlayer)
			s.Puck = Puck{X: 50, Y: tt.puckY, DX: -6, DY: 0}

			got, events := Update(r, s, core.NewInputState(), &fixedRand{v: 0.5})
			if got.Puck.DX != 6 {
				t.Errorf("DX = %v, expected 6 away from the left paddle", got.Puck.DX)
			}
			if got.Puck.DY != tt.wantDY {
				t.Errorf("DY = %v, expected %v", got.Puck.DY, tt.wantDY)
			}
			if !slices.Contains(events, core.EventPaddleHit) {
				t.Errorf("events = %v, expected paddleHit", events)
			}
		})
	}
}

func TestRightPaddleBouncesLeft(t *testing.T) {
	r := DefaultRules()
	s := runningState(r, ModeTwoPlayer)
	s.Puck = Puck{X: 748, Y: 200, DX: 6, DY: 0}

	got, events := Update(r, s, core.NewInputState(), &fixedRand{v: 0.5})
	if got.Puck.DX != -6 || got.Puck.DY != 0 {
		t.Errorf("velocity = (%v,%v), expected (-6,0)", got.Puck.DX, got.Puck.DY)
	}
	if !slices.Contains(events, core.EventPaddleHit) {
		t.Errorf("events = %v, expected paddleHit", events)
	}
}

func TestOverlapWhileLeavingKeepsSpeed(t *testing.T) {
	r := DefaultRules()
	s := runningState(r, ModeTwoPlayer)
	s.Puck = Puck{X: 10, Y: 200, DX: 20, DY: 0}

	got, events := Update(r, s, core.NewInputState(), &fixedRand{v: 0.5})
	if got.Puck.DX != 20 {
		t.Errorf("DX = %v, expected 20 (magnitude kept, no cap on a hit frame)", got.Puck.DX)
	}
	if slices.Contains(events, core.EventPaddleHit) {
		t.Error("a puck already leaving the paddle should not raise paddleHit")
	}
}

func TestStationaryPuckLeavesPaddle(t *testing.T) {
	r := DefaultRules()
	s := runningState(r, ModeTwoPlayer)
	s.Puck = Puck{X: 30, Y: 200}

	got, _ := Update(r, s, core.NewInputState(), &fixedRand{v: 0.5})
	if got.Puck.DX != 6 {
		t.Errorf("DX = %v, expected 6", got.Puck.DX)
	}
}

func TestSpeedCap(t *testing.T) {
	r := DefaultRules()
	s := runningState(r, ModeTwoPlayer)
	s.Puck = Puck{X: 300, Y: 200, DX: 20, DY: 0}

	got, _ := Update(r, s, core.NewInputState(), &fixedRand{v: 0.5})
	if got.Puck.DX != 12 {
		t.Errorf("DX = %v, expected capped to 12", got.Puck.DX)
	}

	r.MaxSpeedFactor = 0
	got, _ = Update(r, s, core.NewInputState(), &fixedRand{v: 0.5})
	if got.Puck.DX != 20 {
		t.Errorf("DX = %v, expected uncapped 20", got.Puck.DX)
	}
}

func TestWallBounce(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name    string
		puck    Puck
		wantDY  float64
		bounced bool
	}{
		{"top wall", Puck{X: 300, Y: 13, DX: 6, DY: -2}, 2, true},
		{"bottom wall", Puck{X: 300, Y: 387, DX: 6, DY: 2}, -2, true},
		{"inside top wall moving away", Puck{X: 300, Y: 5, DX: 6, DY: 2}, 2, false},
		{"open ice", Puck{X: 300, Y: 200, DX: 6, DY: 2}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := runningState(r, ModeTwoPlayer)
			s.Puck = tt.puck

			got, events := Update(r, s, core.NewInputState(), &fixedRand{v: 0.5})
			if got.Puck.DY != tt.wantDY {
				t.Errorf("DY = %v, expected %v", got.Puck.DY, tt.wantDY)
			}
			if slices.Contains(events, core.EventWallBounce) != tt.bounced {
				t.Errorf("events = %v, bounced expected %v", events, tt.bounced)
			}
		})
	}
}

func TestMatchWon(t *testing.T) {
	r := DefaultRules()
	s := runningState(r, ModeTwoPlayer)
	s.Score.Player2 = 9
	s.Paddle1.Y = 0
	s.Puck = Puck{X: 3, Y: 200, DX: -6, DY: 0}
	rng := &fixedRand{v: 0.5}

	s, events := Update(r, s, core.NewInputState(), rng)
	if s.Winner != core.Player2 || s.Running || !s.Celebrating {
		t.Fatalf("after winning goal: winner=%v running=%v celebrating=%v",
			s.Winner, s.Running, s.Celebrating)
	}
	if s.Score.Player2 != 10 {
		t.Errorf("score = %d, expected 10", s.Score.Player2)
	}
	if !slices.Contains(events, core.EventGoalScored) || !slices.Contains(events, core.EventMatchWon) {
		t.Errorf("events = %v, expected goalScored and matchWon", events)
	}
	if rng.draws != 0 {
		t.Errorf("winning goal drew %d random numbers, expected no relaunch", rng.draws)
	}

	frozen := s
	in := core.NewInputState()
	in.Press(core.KeyS)
	for range 10 {
		s, _ = Update(r, s, in, rng)
	}
	if s != frozen {
		t.Error("state changed after the match was won")
	}
}

func TestWinScoreFromRules(t *testing.T) {
	r := DefaultRules()
	r.WinScore = 1
	s := runningState(r, ModeTwoPlayer)
	s.Puck = Puck{X: 798, Y: 300, DX: 6}

	s, _ = Update(r, s, core.NewInputState(), &fixedRand{v: 0.5})
	if s.Winner != core.Player1 {
		t.Errorf("winner = %v, expected Player 1 at win score 1", s.Winner)
	}
}

func TestKeyboardPaddleMovement(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name  string
		keys  []core.Key
		start float64
		want  float64
	}{
		{"s moves down", []core.Key{core.KeyS}, 0, 6},
		{"upper case S", []core.Key{"S"}, 0, 6},
		{"w moves up", []core.Key{core.KeyW}, 100, 94},
		{"w clamps at top", []core.Key{core.KeyW}, 3, 0},
		{"s clamps at bottom", []core.Key{core.KeyS}, 318, 320},
		{"both keys cancel", []core.Key{core.KeyW, core.KeyS}, 100, 100},
		{"arrows ignored on left", []core.Key{core.KeyArrowDown}, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := runningState(r, ModeTwoPlayer)
			s.Paddle1.Y = tt.start
			in := core.NewInputState()
			for _, k := range tt.keys {
				in.Press(k)
			}

			got, _ := Update(r, s, in, &fixedRand{v: 0.5})
			if got.Paddle1.Y != tt.want {
				t.Errorf("paddle1 y = %v, expected %v", got.Paddle1.Y, tt.want)
			}
		})
	}
}

func TestArrowKeysByMode(t *testing.T) {
	r := DefaultRules()
	in := core.NewInputState()
	in.Press(core.KeyArrowUp)

	s := runningState(r, ModeTwoPlayer)
	got, _ := Update(r, s, in, &fixedRand{v: 0.5})
	if got.Paddle2.Y != 154 {
		t.Errorf("two-player: paddle2 y = %v, expected 154", got.Paddle2.Y)
	}

	s = runningState(r, ModeOnline)
	got, _ = Update(r, s, in, &fixedRand{v: 0.5})
	if got.Paddle2.Y != 160 {
		t.Errorf("online: paddle2 y = %v, expected arrows ignored", got.Paddle2.Y)
	}
}

func TestTouchOverridesKeys(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name   string
		touchY float64
		want   float64
	}{
		{"centres paddle", 100, 60},
		{"clamps top", 10, 0},
		{"clamps bottom", 1000, 320},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := runningState(r, ModeTwoPlayer)
			in := core.NewInputState()
			in.Press(core.KeyS)
			in.SetTouch(core.Player1, tt.touchY)

			got, _ := Update(r, s, in, &fixedRand{v: 0.5})
			if got.Paddle1.Y != tt.want {
				t.Errorf("paddle1 y = %v, expected %v", got.Paddle1.Y, tt.want)
			}
		})
	}
}

func TestOnlineRemoteTouch(t *testing.T) {
	r := DefaultRules()
	s := runningState(r, ModeOnline)
	s.Puck = Puck{X: 600, Y: 300, DX: 6}
	in := core.NewInputState()
	in.SetTouch(core.Player2, 140)
	rng := &fixedRand{v: 0.5}

	got, _ := Update(r, s, in, rng)
	if got.Paddle2.Y != 100 {
		t.Errorf("paddle2 y = %v, expected 100", got.Paddle2.Y)
	}
	if rng.draws != 0 {
		t.Error("online mode should not run the AI")
	}
}

func TestSingleTickInvariants(t *testing.T) {
	r := DefaultRules()
	for _, mode := range []Mode{ModeSinglePlayer, ModeTwoPlayer, ModeOnline} {
		t.Run(mode.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			s := runningState(r, mode)
			keys := []core.Key{core.KeyW, core.KeyS, core.KeyArrowUp, core.KeyArrowDown}
			matches := 0

			for tick := 0; tick < 20000; tick++ {
				in := core.NewInputState()
				for _, k := range keys {
					if rng.Intn(3) == 0 {
						in.Press(k)
					}
				}
				if rng.Intn(10) == 0 {
					in.SetTouch(core.Player1, rng.Float64()*500-50)
				}
				if rng.Intn(10) == 0 {
					in.SetTouch(core.Player2, rng.Float64()*500-50)
				}

				prev := s
				s, _ = Update(r, s, in, rng)

				for _, y := range []float64{s.Paddle1.Y, s.Paddle2.Y} {
					if y < 0 || y > r.MaxPaddleY() {
						t.Fatalf("tick %d: paddle y %v out of bounds", tick, y)
					}
				}
				if s.Score.Player1 < prev.Score.Player1 || s.Score.Player2 < prev.Score.Player2 {
					t.Fatalf("tick %d: score decreased %+v -> %+v", tick, prev.Score, s.Score)
				}
				if prev.Winner != core.PlayerNone && s != prev {
					t.Fatalf("tick %d: state changed after winner", tick)
				}
				if s.Winner != core.PlayerNone {
					if s.Running || !s.Celebrating {
						t.Fatalf("tick %d: winner set but running=%v celebrating=%v", tick, s.Running, s.Celebrating)
					}
					matches++
					s = s.Reset(r)
					s.Running = true
				}
			}
			t.Logf("%d matches completed", matches)
		})
	}
}

func TestUpdateDeterministic(t *testing.T) {
	r := DefaultRules()
	run := func() State {
		rng := rand.New(rand.NewSource(7))
		s := runningState(r, ModeSinglePlayer)
		in := core.NewInputState()
		for tick := 0; tick < 5000; tick++ {
			if tick%50 == 0 {
				in = core.NewInputState()
				if tick%100 == 0 {
					in.Press(core.KeyW)
				} else {
					in.Press(core.KeyS)
				}
			}
			s, _ = Update(r, s, in, rng)
			if !s.Running {
				break
			}
		}
		return s
	}

	a, b := run(), run()
	if a != b {
		t.Errorf("same seed produced different states:\n%+v\n%+v", a, b)
	}
}

func TestUpdateDoesNotMutateInput(t *testing.T) {
	r := DefaultRules()
	s := runningState(r, ModeSinglePlayer)
	before := s
	in := core.NewInputState()
	in.Press(core.KeyS)

	_, _ = Update(r, s, in, &fixedRand{v: 0.5})
	if s != before {
		t.Error("Update mutated its state argument")
	}
	if !in.Held(core.KeyS) {
		t.Error("Update mutated the input state")
	}
}

func TestSteerPaddle(t *testing.T) {
	r := DefaultRules()
	in := core.NewInputState()
	in.Press(core.KeyArrowDown)

	if got := SteerPaddle(r, 100, in, core.Player2); got != 106 {
		t.Errorf("Player2 arrow down = %v, expected 106", got)
	}
	if got := SteerPaddle(r, 100, in, core.Player1); got != 100 {
		t.Errorf("Player1 should ignore arrows, got %v", got)
	}
}
