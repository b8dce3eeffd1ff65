package audio

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"

	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/core"
)

func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			if v := max(buf[i][0], -buf[i][0]); v > peak {
				peak = v
			}
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestOscillatorLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		osc := NewOscillator(440, 100*time.Millisecond, wave, rate)
		n, peak := drain(osc)
		if n != rate.N(100*time.Millisecond) {
			t.Errorf("wave %d: streamed %d samples, expected %d", wave, n, rate.N(100*time.Millisecond))
		}
		if peak > 1 {
			t.Errorf("wave %d: peak %v exceeds 1", wave, peak)
		}
	}
}

func TestSquareWaveValues(t *testing.T) {
	osc := NewOscillator(220, 50*time.Millisecond, WaveSquare, beep.SampleRate(44100))
	buf := make([][2]float64, 64)
	n, _ := osc.Stream(buf)
	for i := 0; i < n; i++ {
		if v := buf[i][0]; v != 1 && v != -1 {
			t.Fatalf("sample %d = %v, expected +-1", i, v)
		}
	}
}

func TestEnvelopeFades(t *testing.T) {
	rate := beep.SampleRate(1000)
	d := 100 * time.Millisecond
	env := NewEnvelope(NewOscillator(0, d, WaveSquare, rate), d, 10*time.Millisecond, 10*time.Millisecond, rate)

	buf := make([][2]float64, 100)
	n, _ := env.Stream(buf)
	if n != 100 {
		t.Fatalf("streamed %d samples, expected 100", n)
	}
	if buf[0][0] != 0 {
		t.Errorf("first sample = %v, expected silence at attack start", buf[0][0])
	}
	if buf[50][0] != 1 {
		t.Errorf("sustain sample = %v, expected 1", buf[50][0])
	}
	if buf[99][0] >= buf[90][0] {
		t.Errorf("release should fade: %v then %v", buf[90][0], buf[99][0])
	}
}

func TestSoundForEvents(t *testing.T) {
	tests := []struct {
		evt     core.Event
		minLen  time.Duration
		audible bool
	}{
		{core.EventPaddleHit, 60 * time.Millisecond, true},
		{core.EventWallBounce, 40 * time.Millisecond, true},
		{core.EventGoalScored, 600 * time.Millisecond, true},
		{core.EventMatchWon, 650 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.evt.String(), func(t *testing.T) {
			s := Sound(tt.evt, sampleRate, 1)
			if s == nil {
				t.Fatal("expected a sound")
			}
			n, peak := drain(s)
			if n < sampleRate.N(tt.minLen) {
				t.Errorf("sound lasts %d samples, expected at least %d", n, sampleRate.N(tt.minLen))
			}
			if (peak > 0) != tt.audible {
				t.Errorf("peak = %v", peak)
			}
		})
	}

	if Sound(core.Event(0), sampleRate, 1) != nil {
		t.Error("unknown event should have no sound")
	}
}

func TestSoundZeroVolumeIsSilent(t *testing.T) {
	_, peak := drain(Sound(core.EventWallBounce, sampleRate, 0))
	if peak != 0 {
		t.Errorf("peak = %v at volume 0", peak)
	}
}

func TestOpenDisabled(t *testing.T) {
	p, err := Open(config.AudioConfig{Enabled: false, Volume: 1}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := p.(Silent); !ok {
		t.Errorf("disabled audio returned %T, expected Silent", p)
	}
	p.Play(core.EventGoalScored)
	p.Close()
}

func TestSpeakerQueuesEffects(t *testing.T) {
	s := newSpeaker(&beep.Mixer{}, 0.5, log.New(io.Discard))

	s.Play(core.EventPaddleHit)
	s.Play(core.EventWallBounce)
	s.Play(core.Event(99))
	if s.Playing() != 2 {
		t.Errorf("Playing() = %d, expected 2", s.Playing())
	}

	s.Close()
	if s.Playing() != 0 {
		t.Errorf("Playing() = %d after Close, expected 0", s.Playing())
	}
	s.Play(core.EventGoalScored)
	if s.Playing() != 0 {
		t.Error("Play after Close should be ignored")
	}
}

func TestSpeakerSwallowsPanics(t *testing.T) {
	s := newSpeaker(&beep.Mixer{}, 0.5, log.New(io.Discard))
	s.add = func(beep.Streamer) { panic("device gone") }

	s.Play(core.EventGoalScored)
	s.Play(core.EventPaddleHit)
}
