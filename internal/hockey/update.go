package hockey

import (
	"math"

	"github.com/vovakirdan/hockey-pong/internal/core"
)

// Rand is the random source consumed by Update. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Update advances s by one tick and returns the next snapshot together with
// the events the tick raised. It never mutates s or in. A stopped match is
// returned unchanged with no events.
//
// rng is drawn from only on a goal relaunch and by the AI.
func Update(r Rules, s State, in core.InputState, rng Rand) (State, []core.Event) {
	if !s.Running {
		return s, nil
	}

	next := s
	next.Tick++
	speed := r.Speed(next.SpeedMultiplier)
	var events []core.Event

	next.Puck.X += next.Puck.DX
	next.Puck.Y += next.Puck.DY

	if bounceWalls(r, &next.Puck) {
		events = append(events, core.EventWallBounce)
	}

	hit := false
	if struck, toward := collide(r, &next.Puck, next.Paddle1, 1, speed); struck {
		hit = true
		if toward {
			events = append(events, core.EventPaddleHit)
		}
	}
	if struck, toward := collide(r, &next.Puck, next.Paddle2, -1, speed); struck {
		hit = true
		if toward {
			events = append(events, core.EventPaddleHit)
		}
	}
	if !hit {
		capSpeed(&next.Puck, speed*r.MaxSpeedFactor)
	}

	switch {
	case next.Puck.X < 0:
		events = append(events, goal(r, &next, core.Player2, speed, rng)...)
	case next.Puck.X > r.FieldWidth:
		events = append(events, goal(r, &next, core.Player1, speed, rng)...)
	}

	next.Paddle1.Y = SteerPaddle(r, next.Paddle1.Y, in, core.Player1)
	switch next.Mode {
	case ModeTwoPlayer:
		next.Paddle2.Y = SteerPaddle(r, next.Paddle2.Y, in, core.Player2)
	case ModeOnline:
		if y, ok := in.Touch(core.Player2); ok {
			next.Paddle2.Y = r.clampPaddle(y - r.PaddleHeight/2)
		}
	default:
		next.Paddle2.Y = aiStep(r, next.Puck, next.Paddle2.Y, rng)
	}

	return next, events
}

// bounceWalls reflects the puck off the top and bottom walls. Only a puck
// still heading into the wall is reflected, so a puck that overlaps a wall
// for several ticks does not rattle.
func bounceWalls(r Rules, p *Puck) bool {
	top := p.Y - r.PuckRadius
	bottom := p.Y + r.PuckRadius
	if (top <= 0 && p.DY < 0) || (bottom >= r.FieldHeight && p.DY > 0) {
		p.DY = -p.DY
		return true
	}
	return false
}

// collide resolves the puck against one paddle. away is +1 for the left
// paddle and -1 for the right one. On overlap the puck always leaves away
// from the paddle: at the configured speed when it was approaching (or had
// no horizontal motion), at its own speed when already leaving. The
// vertical velocity is reset from the hit position.
func collide(r Rules, p *Puck, paddle Paddle, away, speed float64) (struck, toward bool) {
	puckBox := core.BoxAround(p.X, p.Y, r.PuckRadius)
	if !puckBox.Overlaps(r.paddleBox(paddle)) {
		return false, false
	}

	toward = p.DX*away < 0
	mag := math.Abs(p.DX)
	if toward || mag == 0 {
		mag = speed
	}
	p.DX = away * mag

	frac := core.Clamp((p.Y-paddle.Y)/r.PaddleHeight, 0, 1)
	p.DY = (frac - 0.5) * speed * r.SpinFactor
	return true, toward
}

// capSpeed scales the puck velocity down to limit. A non-positive limit
// disables the cap.
func capSpeed(p *Puck, limit float64) {
	if limit <= 0 {
		return
	}
	mag := math.Hypot(p.DX, p.DY)
	if mag <= limit {
		return
	}
	p.DX = p.DX * limit / mag
	p.DY = p.DY * limit / mag
}

// goal credits scorer. Reaching the win score ends the match with the puck
// left where it crossed; otherwise the puck is recentred and relaunched
// toward the scorer's own side.
func goal(r Rules, s *State, scorer core.PlayerID, speed float64, rng Rand) []core.Event {
	events := []core.Event{core.EventGoalScored}

	total := 0
	if scorer == core.Player1 {
		s.Score.Player1++
		total = s.Score.Player1
	} else {
		s.Score.Player2++
		total = s.Score.Player2
	}

	if total >= r.WinScore {
		s.Winner = scorer
		s.Running = false
		s.Celebrating = true
		return append(events, core.EventMatchWon)
	}

	dir := 1.0
	if scorer == core.Player1 {
		dir = -1
	}
	s.Puck = Puck{
		X:  r.FieldWidth / 2,
		Y:  r.FieldHeight / 2,
		DX: dir * speed,
		DY: (rng.Float64() - 0.5) * speed,
	}
	return events
}

// SteerPaddle applies one side's human input to a paddle top y: the side's
// keys move it by PaddleSpeed, and an active touch overrides the keys by
// centring the paddle on the touch. The result is clamped after every write.
//
// Player1 steers with W/S, Player2 with the arrow keys.
func SteerPaddle(r Rules, y float64, in core.InputState, side core.PlayerID) float64 {
	up, down := core.KeyW, core.KeyS
	if side == core.Player2 {
		up, down = core.KeyArrowUp, core.KeyArrowDown
	}
	if in.Held(up) {
		y = r.clampPaddle(y - r.PaddleSpeed)
	}
	if in.Held(down) {
		y = r.clampPaddle(y + r.PaddleSpeed)
	}
	if ty, ok := in.Touch(side); ok {
		y = r.clampPaddle(ty - r.PaddleHeight/2)
	}
	return y
}

func (r Rules) clampPaddle(y float64) float64 {
	return core.Clamp(y, 0, r.MaxPaddleY())
}

func (r Rules) paddleBox(p Paddle) core.Box {
	return core.Box{X: p.X, Y: p.Y, W: r.PaddleWidth, H: r.PaddleHeight}
}
