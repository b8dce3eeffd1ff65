// Package audio plays short synthesized effects for game events.
// Playback is fire-and-forget: failures are logged and never reach the
// simulation.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/core"
)

const sampleRate = beep.SampleRate(44100)

// ErrNoDevice is returned by Open when no output device can be initialised.
var ErrNoDevice = errors.New("audio: no output device")

// Player receives game events.
type Player interface {
	Play(evt core.Event)
	Close()
}

// Silent is a Player that drops every event.
type Silent struct{}

func (Silent) Play(core.Event) {}
func (Silent) Close() {}

// Speaker mixes effects onto the system output.
type Speaker struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	logger *log.Logger
	closed bool

	// add queues a streamer for playback.
	add func(beep.Streamer)
}

// speakerOnce guards speaker.Init, which may only run once per process.
var (
	speakerOnce sync.Once
	speakerErr  error
)

// Open returns a Player for cfg. Disabled audio yields Silent. A device
// failure yields Silent together with an error wrapping ErrNoDevice so the
// caller can log it and carry on.
func Open(cfg config.AudioConfig, logger *log.Logger) (Player, error) {
	if !cfg.Enabled || cfg.Volume <= 0 {
		return Silent{}, nil
	}
	if logger == nil {
		logger = log.Default()
	}

	speakerOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				speakerErr = fmt.Errorf("speaker init panicked: %v", r)
			}
		}()
		speakerErr = speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond))
	})
	if speakerErr != nil {
		return Silent{}, fmt.Errorf("%w: %v", ErrNoDevice, speakerErr)
	}

	mixer := &beep.Mixer{}
	speaker.Play(mixer)

	s := newSpeaker(mixer, cfg.Volume, logger)
	s.add = func(st beep.Streamer) {
		speaker.Lock()
		mixer.Add(st)
		speaker.Unlock()
	}
	return s, nil
}

func newSpeaker(mixer *beep.Mixer, volume float64, logger *log.Logger) *Speaker {
	s := &Speaker{
		mixer:  mixer,
		volume: volume,
		logger: logger.WithPrefix("audio"),
	}
	s.add = mixer.Add
	return s
}

// Play starts the effect for evt. It never panics and never blocks on the
// device.
func (s *Speaker) Play(evt core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("playback failed", "event", evt, "panic", r)
		}
	}()

	st := Sound(evt, sampleRate, s.volume)
	if st == nil {
		return
	}
	s.add(st)
}

// Close stops all effects. Further Play calls are ignored.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
}

// Playing returns how many effects are still sounding.
func (s *Speaker) Playing() int {
	speaker.Lock()
	defer speaker.Unlock()
	return s.mixer.Len()
}
