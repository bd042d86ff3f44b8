// Package scenario loads Lua-scripted draw sequences and replays them
// against a session, producing the trace used for cross-engine diffing.
//
// Scenarios keep the "drive both engines through the same call order"
// workflow out of compiled code: the same script runs against this
// implementation and, via its exported trace, against the foreign one.
package scenario

import (
	"context"
	"fmt"

	"github.com/louisbranch/parityroll/internal/session"
	"github.com/louisbranch/parityroll/internal/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Step operation names, matching the Lua method names.
const (
	StepSeed       = "seed"
	StepRoll       = "roll"
	StepDie        = "die"
	StepDice       = "dice"
	StepCosmetic   = "cosmetic"
	StepTraceOn    = "trace_on"
	StepTraceOff   = "trace_off"
	StepTraceClear = "trace_clear"
)

// Step is one scripted operation. A and B carry the operation's numeric
// arguments (sides, or count and sides for dice); Seed carries the seed
// for seed steps.
type Step struct {
	Op   string
	A    int64
	B    int64
	Seed uint64
}

// Scenario is a named ordered sequence of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// StepValue is the observable result of one draw step. Non-draw steps
// (seed, trace toggles) produce no StepValue.
type StepValue struct {
	Op    string
	Value int64
}

// Result captures one replay of a scenario.
type Result struct {
	Scenario string
	Seed     uint64
	Values   []StepValue
	Trace    []trace.Entry
}

// Run replays the scenario against the session. The defaultSeed is
// applied before the first step; an explicit seed step overrides it.
// Tracing is enabled from the start unless the script toggles it.
func Run(ctx context.Context, sess *session.Session, sc *Scenario, defaultSeed uint64) (Result, error) {
	if sess == nil {
		return Result{}, fmt.Errorf("session is required")
	}
	if sc == nil {
		return Result{}, fmt.Errorf("scenario is required")
	}

	tracer := otel.Tracer("parityroll/scenario")
	_, span := tracer.Start(ctx, "scenario.run")
	span.SetAttributes(
		attribute.String("scenario.name", sc.Name),
		attribute.Int("scenario.steps", len(sc.Steps)),
	)
	defer span.End()

	result := Result{Scenario: sc.Name, Seed: defaultSeed}
	sess.Seed(defaultSeed)
	sess.EnableTracing()

	for i, step := range sc.Steps {
		switch step.Op {
		case StepSeed:
			result.Seed = step.Seed
			sess.Seed(step.Seed)
		case StepRoll:
			result.Values = append(result.Values, StepValue{Op: step.Op, Value: sess.RollBounded(step.A)})
		case StepDie:
			result.Values = append(result.Values, StepValue{Op: step.Op, Value: sess.RollDie(step.A)})
		case StepDice:
			result.Values = append(result.Values, StepValue{Op: step.Op, Value: sess.SumOfDice(step.A, step.B)})
		case StepCosmetic:
			result.Values = append(result.Values, StepValue{Op: step.Op, Value: sess.CosmeticRoll(step.A)})
		case StepTraceOn:
			sess.EnableTracing()
		case StepTraceOff:
			sess.DisableTracing()
		case StepTraceClear:
			sess.ClearTrace()
		default:
			return Result{}, fmt.Errorf("step %d: unknown operation %q", i, step.Op)
		}
	}

	result.Trace = sess.ExportTrace()
	return result, nil
}
