package service

import (
	"context"
	"testing"
)

func seedValue(v uint64) *uint64 { return &v }

func TestSeedStreamsUsesProvidedSeed(t *testing.T) {
	s := New(0)
	_, result, err := s.seedStreamsHandler()(context.Background(), nil, SeedStreamsInput{Seed: seedValue(42)})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if result.Seed != 42 {
		t.Fatalf("seed = %d, want 42", result.Seed)
	}

	// The golden triplet confirms the session actually reseeded.
	want := []int64{8, 6, 8}
	for i, w := range want {
		_, roll, err := s.rollBoundedHandler()(context.Background(), nil, RollInput{Sides: 10})
		if err != nil {
			t.Fatalf("roll %d: %v", i, err)
		}
		if roll.Value != w {
			t.Fatalf("roll %d = %d, want %d", i, roll.Value, w)
		}
	}
}

func TestSeedStreamsGeneratesSeedWhenOmitted(t *testing.T) {
	s := New(0)
	_, first, err := s.seedStreamsHandler()(context.Background(), nil, SeedStreamsInput{})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, second, err := s.seedStreamsHandler()(context.Background(), nil, SeedStreamsInput{})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first.Seed == second.Seed {
		t.Fatalf("generated seeds collided: %d", first.Seed)
	}
}

func TestRollDieAndSumOfDice(t *testing.T) {
	s := New(42)
	_, die, err := s.rollDieHandler()(context.Background(), nil, RollInput{Sides: 6})
	if err != nil {
		t.Fatalf("die: %v", err)
	}
	if die.Value != 5 {
		t.Fatalf("die = %d, want 5 (seed 42 golden)", die.Value)
	}

	s2 := New(42)
	_, pool, err := s2.sumOfDiceHandler()(context.Background(), nil, SumOfDiceInput{Count: 3, Sides: 6})
	if err != nil {
		t.Fatalf("dice: %v", err)
	}
	if pool.Total != 11 {
		t.Fatalf("dice total = %d, want 11 (seed 42 golden)", pool.Total)
	}
}

func TestTraceToolsRoundTrip(t *testing.T) {
	s := New(42)
	ctx := context.Background()

	if _, _, err := s.traceEnableHandler()(ctx, nil, TraceControlInput{}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if _, _, err := s.rollBoundedHandler()(ctx, nil, RollInput{Sides: 10}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, _, err := s.cosmeticRollHandler()(ctx, nil, RollInput{Sides: 10}); err != nil {
		t.Fatalf("cosmetic: %v", err)
	}

	_, export, err := s.traceExportHandler()(ctx, nil, TraceExportInput{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(export.Entries) != 1 {
		t.Fatalf("exported %d entries, want 1 (cosmetic draws untraced)", len(export.Entries))
	}

	_, cleared, err := s.traceClearHandler()(ctx, nil, TraceControlInput{})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !cleared.Enabled {
		t.Fatal("clear must not disable tracing")
	}
	_, export, err = s.traceExportHandler()(ctx, nil, TraceExportInput{})
	if err != nil {
		t.Fatalf("export after clear: %v", err)
	}
	if len(export.Entries) != 0 {
		t.Fatalf("exported %d entries after clear, want 0", len(export.Entries))
	}

	if _, _, err := s.traceDisableHandler()(ctx, nil, TraceControlInput{}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, _, err := s.rollBoundedHandler()(ctx, nil, RollInput{Sides: 10}); err != nil {
		t.Fatalf("roll while disabled: %v", err)
	}
	_, export, err = s.traceExportHandler()(ctx, nil, TraceExportInput{})
	if err != nil {
		t.Fatalf("final export: %v", err)
	}
	if len(export.Entries) != 0 {
		t.Fatalf("disabled recorder captured %d entries", len(export.Entries))
	}
}
