package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/vovakirdan/hockey-pong/internal/core"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a single tone of fixed length.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	noise    *rand.Rand
}

// NewOscillator creates a streamer producing duration worth of one wave.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		noise:    rand.New(rand.NewSource(int64(freq*1000) + 1)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = -1
			if o.phase < 0.5 {
				val = 1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveNoise:
			val = o.noise.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope wraps s with a linear attack/release of the given lengths.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	releaseStart := e.total - e.release

	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= releaseStart {
			vol = math.Max(float64(e.total-e.position)/float64(e.release), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales a stream linearly. Zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// tone is an enveloped oscillator.
func tone(freq float64, d time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, 3*time.Millisecond, d/2, rate)
}

// Sound builds the effect for a game event at the given master volume.
// Events without a sound return nil.
func Sound(evt core.Event, rate beep.SampleRate, volume float64) beep.Streamer {
	var s beep.Streamer
	switch evt {
	case core.EventPaddleHit:
		// Stick on puck: a dull knock with a click of noise.
		s = beep.Mix(
			newVolume(tone(180, 70*time.Millisecond, WaveSquare, rate), 0.5),
			newVolume(tone(0, 25*time.Millisecond, WaveNoise, rate), 0.3),
		)
	case core.EventWallBounce:
		s = newVolume(tone(520, 45*time.Millisecond, WaveSine, rate), 0.6)
	case core.EventGoalScored:
		// Goal horn: two detuned saws.
		s = beep.Mix(
			newVolume(tone(110, 700*time.Millisecond, WaveSaw, rate), 0.4),
			newVolume(tone(165, 700*time.Millisecond, WaveSaw, rate), 0.3),
		)
	case core.EventMatchWon:
		s = beep.Seq(
			newVolume(tone(523.25, 150*time.Millisecond, WaveSine, rate), 0.6),
			newVolume(tone(659.25, 150*time.Millisecond, WaveSine, rate), 0.6),
			newVolume(tone(783.99, 400*time.Millisecond, WaveSine, rate), 0.6),
		)
	default:
		return nil
	}
	return newVolume(s, volume)
}
