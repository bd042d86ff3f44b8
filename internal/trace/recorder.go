// Package trace records RNG draws into a fixed ring buffer so call
// sequences from two independent engine implementations can be diffed.
package trace

import (
	"encoding/json"
	"fmt"
)

// Capacity is the fixed size of the ring. Once more than Capacity
// records have been written, the oldest are silently overwritten; the
// buffer never grows and never fails.
const Capacity = 4096

// Entry is one recorded draw. Entries are value-copied into the ring
// and only ever cleared wholesale, never destroyed individually.
type Entry struct {
	Seq    uint64 `json:"seq"`
	Op     string `json:"op"`
	Arg    uint64 `json:"arg"`
	Result uint64 `json:"result"`
}

// String renders an entry the way divergence reports print them.
func (e Entry) String() string {
	return fmt.Sprintf("seq=%d %s(%d) -> %d", e.Seq, e.Op, e.Arg, e.Result)
}

// Recorder is a fixed-capacity circular log of draws.
//
// A Recorder is not safe for concurrent use; the engine it serves is
// single-threaded by contract.
type Recorder struct {
	entries [Capacity]Entry
	count   uint64
	enabled bool
}

// NewRecorder returns a disabled recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Enable turns recording on and resets the write count to zero.
func (r *Recorder) Enable() {
	r.count = 0
	r.enabled = true
}

// Disable turns recording off. Already-recorded entries survive.
func (r *Recorder) Disable() {
	r.enabled = false
}

// Enabled reports whether draws are currently being recorded.
func (r *Recorder) Enabled() bool {
	return r.enabled
}

// Clear resets the write count without changing the enabled flag.
func (r *Recorder) Clear() {
	r.count = 0
}

// Len reports how many entries Export would return.
func (r *Recorder) Len() int {
	if r.count > Capacity {
		return Capacity
	}
	return int(r.count)
}

// Record appends one draw. It is a no-op while disabled. The hot path
// allocates nothing.
func (r *Recorder) Record(op string, arg, result uint64) {
	if !r.enabled {
		return
	}
	r.entries[r.count%Capacity] = Entry{
		Seq:    r.count,
		Op:     op,
		Arg:    arg,
		Result: result,
	}
	r.count++
}

// Export returns the surviving entries oldest to newest. After the ring
// has wrapped, the window starts at slot count mod Capacity, not slot 0.
func (r *Recorder) Export() []Entry {
	if r.count <= Capacity {
		out := make([]Entry, r.count)
		copy(out, r.entries[:r.count])
		return out
	}
	out := make([]Entry, 0, Capacity)
	start := r.count % Capacity
	out = append(out, r.entries[start:]...)
	out = append(out, r.entries[:start]...)
	return out
}

// EncodeJSON serializes entries for cross-implementation comparison.
// The format is self-describing field-tagged records; only the field
// set and ordering are contractual, not the encoding itself.
func EncodeJSON(entries []Entry) ([]byte, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode trace: %w", err)
	}
	return data, nil
}
