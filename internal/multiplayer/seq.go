package multiplayer

import "sync/atomic"

// Sequencer numbers outgoing frames starting at 1.
type Sequencer struct {
	n atomic.Uint64
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

// SeqFilter keeps the newest frame of a stream: a frame is accepted only
// if its sequence number is greater than every one accepted before.
// The zero value accepts any positive sequence number.
type SeqFilter struct {
	last uint64
}

// Accept reports whether seq is newer than the last accepted frame and
// records it if so.
func (f *SeqFilter) Accept(seq uint64) bool {
	if seq <= f.last {
		return false
	}
	f.last = seq
	return true
}

// Reset forgets the stream, for a new match.
func (f *SeqFilter) Reset() {
	f.last = 0
}
