// Package session ties one dual-stream manager to one trace recorder
// and exposes the boundary operations callers drive during a parity run.
//
// Sessions replace the process-wide RNG globals of the engine under
// comparison: each logical game run owns its own instance, so parallel
// test runs cannot contaminate each other. A Session is single-threaded
// by the same contract as the core; share one across goroutines only
// behind external synchronization.
package session

import (
	"github.com/louisbranch/parityroll/internal/stream"
	"github.com/louisbranch/parityroll/internal/trace"
)

// Session owns the RNG streams and trace recorder of one engine run.
type Session struct {
	streams *stream.Manager
	rec     *trace.Recorder
}

// New returns a session with both streams seeded from value and a
// disabled trace recorder wired to the primary stream.
//
// Only primary-stream wrapper draws are traced: cosmetic consumption is
// caller-determined and its interleaving is not part of the comparison
// contract.
func New(seed uint64) *Session {
	s := &Session{
		streams: stream.NewManager(seed),
		rec:     trace.NewRecorder(),
	}
	s.streams.Primary().SetSink(s.rec)
	return s
}

// Seed reseeds both streams deterministically from one external value.
func (s *Session) Seed(value uint64) {
	s.streams.ReseedAll(value)
}

// RollBounded draws [0, n) from the primary stream; n <= 0 yields 0.
func (s *Session) RollBounded(n int64) int64 {
	return s.streams.Primary().RollBounded(n)
}

// RollDie draws [1, n] from the primary stream; n <= 0 yields 1.
func (s *Session) RollDie(n int64) int64 {
	return s.streams.Primary().RollDie(n)
}

// SumOfDice draws count dice of the given sides from the primary stream.
func (s *Session) SumOfDice(count, sides int64) int64 {
	return s.streams.Primary().SumOfDice(count, sides)
}

// CosmeticRoll draws [0, n) from the secondary stream. Cosmetic draws
// never influence the primary stream and are not traced.
func (s *Session) CosmeticRoll(n int64) int64 {
	return s.streams.Secondary().RollBounded(n)
}

// EnableTracing starts recording primary-stream draws from sequence 0.
func (s *Session) EnableTracing() {
	s.rec.Enable()
}

// DisableTracing stops recording without discarding entries.
func (s *Session) DisableTracing() {
	s.rec.Disable()
}

// ClearTrace drops all recorded entries, leaving the enabled flag as is.
func (s *Session) ClearTrace() {
	s.rec.Clear()
}

// TracingEnabled reports whether draws are currently being recorded.
func (s *Session) TracingEnabled() bool {
	return s.rec.Enabled()
}

// ExportTrace returns the surviving trace window, oldest to newest.
func (s *Session) ExportTrace() []trace.Entry {
	return s.rec.Export()
}

// Streams exposes the underlying manager for tests and harness glue.
func (s *Session) Streams() *stream.Manager {
	return s.streams
}
