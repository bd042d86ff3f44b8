// Package compare diffs RNG traces from two engine implementations and
// reports the first call where they diverge.
package compare

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/parityroll/internal/stream"
	"github.com/louisbranch/parityroll/internal/trace"
)

// contextWindow is how many entries around a divergence each side keeps
// in the report.
const contextWindow = 3

// Divergence describes the first mismatch between two traces.
type Divergence struct {
	// CallIndex is the position of the first mismatched entry, or the
	// length of the shorter trace when one side simply stops early.
	CallIndex int
	// Description is a one-line human summary of the mismatch.
	Description string
	// LeftContext and RightContext hold the entries surrounding the
	// divergence on each side, including the mismatched entry itself.
	LeftContext  []trace.Entry
	RightContext []trace.Entry
}

// Traces compares two traces entry by entry and returns the first
// divergence, or nil when the traces are identical.
//
// Sequence numbers are deliberately ignored: the two sides may have
// cleared their rings at different times, so alignment is positional.
func Traces(left, right []trace.Entry) *Divergence {
	limit := len(left)
	if len(right) < limit {
		limit = len(right)
	}

	for i := 0; i < limit; i++ {
		l, r := left[i], right[i]
		if l.Op != r.Op || l.Arg != r.Arg || l.Result != r.Result {
			return &Divergence{
				CallIndex:    i,
				Description:  fmt.Sprintf("%s(%d) -> %d vs %s(%d) -> %d", l.Op, l.Arg, l.Result, r.Op, r.Arg, r.Result),
				LeftContext:  window(left, i),
				RightContext: window(right, i),
			}
		}
	}

	if len(left) != len(right) {
		return &Divergence{
			CallIndex:    limit,
			Description:  fmt.Sprintf("trace lengths differ: %d vs %d calls", len(left), len(right)),
			LeftContext:  window(left, limit),
			RightContext: window(right, limit),
		}
	}
	return nil
}

func window(entries []trace.Entry, center int) []trace.Entry {
	lo := center - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := center + contextWindow + 1
	if hi > len(entries) {
		hi = len(entries)
	}
	out := make([]trace.Entry, hi-lo)
	copy(out, entries[lo:hi])
	return out
}

// foreignEntry tolerates the operation tag living under either "op"
// (this implementation) or "func" (the engine under comparison).
type foreignEntry struct {
	Seq    uint64 `json:"seq"`
	Op     string `json:"op"`
	Func   string `json:"func"`
	Arg    uint64 `json:"arg"`
	Result uint64 `json:"result"`
}

// foreignOps maps the C-heritage function names the engine under
// comparison logs onto this implementation's operation tags.
var foreignOps = map[string]string{
	"rn2": stream.OpRoll,
	"rnd": stream.OpDie,
}

// ParseJSON decodes a trace exported by either implementation,
// normalizing foreign operation names to the local tag set.
func ParseJSON(data []byte) ([]trace.Entry, error) {
	var raw []foreignEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse trace: %w", err)
	}
	entries := make([]trace.Entry, len(raw))
	for i, e := range raw {
		op := e.Op
		if op == "" {
			op = e.Func
		}
		if mapped, ok := foreignOps[op]; ok {
			op = mapped
		}
		entries[i] = trace.Entry{Seq: e.Seq, Op: op, Arg: e.Arg, Result: e.Result}
	}
	return entries, nil
}
