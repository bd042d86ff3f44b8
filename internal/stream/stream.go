// Package stream layers the game-facing draw operations over the ISAAC
// cipher and fans draws out to an optional trace sink.
package stream

import "github.com/louisbranch/parityroll/internal/isaac"

// Operation tags recorded with traced draws. The tag set is fixed so
// traces from independent engines diff cleanly.
const (
	OpRoll = "roll" // RollBounded, and each inner die of SumOfDice
	OpDie  = "die"  // RollDie
)

// Sink receives one record per traced draw. Implementations decide
// whether recording is currently enabled.
type Sink interface {
	Record(op string, arg, result uint64)
}

// Stream owns one cipher plus the seed it was last initialized with.
//
// # Determinism
//
// Given the same seed and the same call sequence, a Stream always
// produces the same results, draw for draw. Reseeding discards all
// undrawn words and restarts determinism from the new seed.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	cipher *isaac.Cipher
	seed   uint64
	sink   Sink
}

// New returns a stream seeded with the given value.
func New(seed uint64) *Stream {
	return &Stream{cipher: isaac.New(seed), seed: seed}
}

// Seed reseeds the stream, discarding undrawn words.
func (s *Stream) Seed(value uint64) {
	s.seed = value
	s.cipher.Seed(value)
}

// LastSeed returns the seed the stream was last initialized with.
func (s *Stream) LastSeed() uint64 {
	return s.seed
}

// SetSink installs the trace sink for this stream's wrapper draws.
// A nil sink disables tracing at the stream level.
func (s *Stream) SetSink(sink Sink) {
	s.sink = sink
}

// Uint64 returns the next raw 64-bit word. Raw draws are not traced.
func (s *Stream) Uint64() uint64 {
	return s.cipher.NextUint64()
}

// Uintn returns an unbiased value in [0, n); 0 when n == 0.
func (s *Stream) Uintn(n uint64) uint64 {
	return s.cipher.NextUint(n)
}

// RollBounded returns an unbiased value in [0, n). Non-positive n
// yields 0 without consuming a draw.
func (s *Stream) RollBounded(n int64) int64 {
	if n <= 0 {
		return 0
	}
	v := int64(s.cipher.NextUint(uint64(n)))
	s.record(OpRoll, uint64(n), uint64(v))
	return v
}

// RollDie returns an unbiased value in [1, n]. Non-positive n yields 1
// without consuming a draw.
func (s *Stream) RollDie(n int64) int64 {
	if n <= 0 {
		return 1
	}
	v := int64(s.cipher.NextUint(uint64(n))) + 1
	s.record(OpDie, uint64(n), uint64(v))
	return v
}

// SumOfDice returns count + the sum of count draws of RollBounded(sides),
// the classic count..count*sides dice total. Non-positive count or sides
// yields count unmodified with no draws performed. Each inner die is
// traced individually as an OpRoll record.
func (s *Stream) SumOfDice(count, sides int64) int64 {
	if count <= 0 || sides <= 0 {
		return count
	}
	total := count
	for i := int64(0); i < count; i++ {
		total += s.RollBounded(sides)
	}
	return total
}

// Regenerations exposes the cipher's cycle counter for boundary tests.
func (s *Stream) Regenerations() uint64 {
	return s.cipher.Regenerations()
}

func (s *Stream) record(op string, arg, result uint64) {
	if s.sink != nil {
		s.sink.Record(op, arg, result)
	}
}
