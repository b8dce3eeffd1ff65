package hockey

import "math"

// aiStep moves the computer paddle toward the puck. It only reacts while
// the puck is heading right and is past centre ice, and it ignores offsets
// inside the dead zone. Each reacting tick draws one jitter sample from rng.
func aiStep(r Rules, puck Puck, y float64, rng Rand) float64 {
	if puck.DX <= 0 || puck.X <= r.FieldWidth/2 {
		return y
	}

	target := puck.Y - r.PaddleHeight/2
	diff := target - y
	move := r.PaddleSpeed * r.AIDifficulty * (r.AIJitterMin + rng.Float64()*r.AIJitterSpan)
	if math.Abs(diff) <= r.AIDeadZone {
		return y
	}
	if diff > 0 {
		return r.clampPaddle(y + move)
	}
	return r.clampPaddle(y - move)
}
