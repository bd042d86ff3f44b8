package stream

import "testing"

type captureSink struct {
	ops     []string
	args    []uint64
	results []uint64
}

func (c *captureSink) Record(op string, arg, result uint64) {
	c.ops = append(c.ops, op)
	c.args = append(c.args, arg)
	c.results = append(c.results, result)
}

// TestRollBoundedGoldenTriplet pins the concrete scenario from the
// regression contract: seed 42, three RollBounded(10) calls.
func TestRollBoundedGoldenTriplet(t *testing.T) {
	want := []int64{8, 6, 8}
	for run := 0; run < 2; run++ {
		s := New(42)
		for i, w := range want {
			if got := s.RollBounded(10); got != w {
				t.Fatalf("run %d roll %d = %d, want %d", run, i, got, w)
			}
		}
	}
}

func TestRollDieGolden(t *testing.T) {
	s := New(42)
	want := []int64{5, 3, 3, 2, 1}
	for i, w := range want {
		if got := s.RollDie(6); got != w {
			t.Fatalf("die %d = %d, want %d", i, got, w)
		}
	}
}

func TestSumOfDiceGolden(t *testing.T) {
	s := New(42)
	if got := s.SumOfDice(3, 6); got != 11 {
		t.Fatalf("SumOfDice(3, 6) = %d, want 11", got)
	}
}

func TestRollBoundedRange(t *testing.T) {
	s := New(99)
	for _, n := range []int64{1, 2, 7, 100} {
		for i := 0; i < 10000; i++ {
			v := s.RollBounded(n)
			if v < 0 || v >= n {
				t.Fatalf("RollBounded(%d) = %d, out of range", n, v)
			}
		}
	}
}

func TestDegenerateInputs(t *testing.T) {
	s := New(1)
	if got := s.RollBounded(0); got != 0 {
		t.Fatalf("RollBounded(0) = %d, want 0", got)
	}
	if got := s.RollBounded(-5); got != 0 {
		t.Fatalf("RollBounded(-5) = %d, want 0", got)
	}
	if got := s.RollDie(0); got != 1 {
		t.Fatalf("RollDie(0) = %d, want 1", got)
	}
	if got := s.RollDie(-3); got != 1 {
		t.Fatalf("RollDie(-3) = %d, want 1", got)
	}
	if got := s.SumOfDice(0, 6); got != 0 {
		t.Fatalf("SumOfDice(0, 6) = %d, want 0", got)
	}
	if got := s.SumOfDice(-2, 6); got != -2 {
		t.Fatalf("SumOfDice(-2, 6) = %d, want -2", got)
	}
	if got := s.SumOfDice(3, 0); got != 3 {
		t.Fatalf("SumOfDice(3, 0) = %d, want 3", got)
	}
}

// Degenerate inputs must not consume draws: the next real draw after a
// pile of no-ops has to match a fresh stream's first draw.
func TestDegenerateInputsConsumeNothing(t *testing.T) {
	a := New(42)
	a.RollBounded(0)
	a.RollDie(-1)
	a.SumOfDice(0, 6)
	a.SumOfDice(4, -2)

	b := New(42)
	if va, vb := a.Uint64(), b.Uint64(); va != vb {
		t.Fatalf("degenerate calls consumed draws: %#x != %#x", va, vb)
	}
}

func TestSumOfDiceRange(t *testing.T) {
	s := New(3)
	for i := 0; i < 5000; i++ {
		v := s.SumOfDice(2, 6)
		if v < 2 || v > 12 {
			t.Fatalf("SumOfDice(2, 6) = %d, out of range", v)
		}
	}
}

// TestRollBoundedUniform runs a chi-squared test over 120k d6 draws.
// The threshold is the p=0.001 critical value for 5 degrees of freedom,
// so a correct generator fails about once per thousand runs of a fixed
// seed — and this seed is fixed, so it never flakes.
func TestRollBoundedUniform(t *testing.T) {
	const (
		draws = 120000
		sides = 6
	)
	s := New(20260824)
	var counts [sides]int64
	for i := 0; i < draws; i++ {
		counts[s.RollBounded(sides)]++
	}
	expected := float64(draws) / float64(sides)
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	if chi2 > 20.515 {
		t.Fatalf("chi-squared = %.3f over threshold 20.515 (counts %v)", chi2, counts)
	}
}

func TestSinkRecordsWrapperDraws(t *testing.T) {
	sink := &captureSink{}
	s := New(42)
	s.SetSink(sink)

	v1 := s.RollBounded(10)
	v2 := s.RollDie(6)
	s.SumOfDice(3, 6)
	s.Uint64() // raw draws are not traced

	if len(sink.ops) != 5 {
		t.Fatalf("recorded %d ops, want 5", len(sink.ops))
	}
	wantOps := []string{OpRoll, OpDie, OpRoll, OpRoll, OpRoll}
	for i, op := range wantOps {
		if sink.ops[i] != op {
			t.Fatalf("op %d = %q, want %q", i, sink.ops[i], op)
		}
	}
	if sink.args[0] != 10 || sink.results[0] != uint64(v1) {
		t.Fatalf("first record = (%d, %d), want (10, %d)", sink.args[0], sink.results[0], v1)
	}
	if sink.args[1] != 6 || sink.results[1] != uint64(v2) {
		t.Fatalf("second record = (%d, %d), want (6, %d)", sink.args[1], sink.results[1], v2)
	}
}

func TestManagerStreamIndependence(t *testing.T) {
	a := NewManager(42)
	b := NewManager(42)

	// Burn an arbitrary amount of the secondary stream on one manager
	// only; primary draws must stay aligned.
	for i := 0; i < 1234; i++ {
		a.Secondary().RollBounded(100)
	}
	for i := 0; i < 100; i++ {
		va, vb := a.Primary().RollBounded(1000), b.Primary().RollBounded(1000)
		if va != vb {
			t.Fatalf("primary draw %d perturbed by secondary use: %d != %d", i, va, vb)
		}
	}
}

func TestManagerReseedAll(t *testing.T) {
	m := NewManager(1)
	m.Primary().Uint64()
	m.Secondary().Uint64()
	m.ReseedAll(42)

	fresh := NewManager(42)
	if m.Primary().Uint64() != fresh.Primary().Uint64() {
		t.Fatal("primary not restarted by ReseedAll")
	}
	if m.Secondary().Uint64() != fresh.Secondary().Uint64() {
		t.Fatal("secondary not restarted by ReseedAll")
	}
	if m.Primary().LastSeed() != 42 || m.Secondary().LastSeed() != 42 {
		t.Fatal("LastSeed not updated by ReseedAll")
	}
}
