package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/parityroll/internal/random"
	"github.com/louisbranch/parityroll/internal/session"
	"github.com/louisbranch/parityroll/internal/trace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SeedStreamsInput represents the MCP tool input for reseeding.
type SeedStreamsInput struct {
	Seed *uint64 `json:"seed,omitempty" jsonschema:"seed value; a random seed is generated when omitted"`
}

// SeedStreamsResult reports the seed both streams were reset to.
type SeedStreamsResult struct {
	Seed uint64 `json:"seed"`
}

// RollInput represents a single bounded or die roll request.
type RollInput struct {
	Sides int64 `json:"sides" jsonschema:"upper bound of the roll"`
}

// RollResult carries one draw.
type RollResult struct {
	Value int64 `json:"value"`
}

// SumOfDiceInput represents a dice-pool request.
type SumOfDiceInput struct {
	Count int64 `json:"count" jsonschema:"number of dice"`
	Sides int64 `json:"sides" jsonschema:"sides per die"`
}

// SumOfDiceResult carries the pool total.
type SumOfDiceResult struct {
	Total int64 `json:"total"`
}

// TraceControlInput represents trace enable/disable/clear requests.
type TraceControlInput struct{}

// TraceControlResult acknowledges a trace control request.
type TraceControlResult struct {
	Enabled bool `json:"enabled"`
}

// TraceExportInput represents a trace export request.
type TraceExportInput struct{}

// TraceExportResult carries the surviving trace window, oldest first.
type TraceExportResult struct {
	Entries []trace.Entry `json:"entries"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "seed_streams",
		Description: "Reseeds both RNG streams deterministically from one value",
	}, s.seedStreamsHandler())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "roll_bounded",
		Description: "Draws an unbiased value in [0, sides) from the primary stream",
	}, s.rollBoundedHandler())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "roll_die",
		Description: "Draws an unbiased value in [1, sides] from the primary stream",
	}, s.rollDieHandler())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sum_of_dice",
		Description: "Rolls a dice pool on the primary stream and returns the total",
	}, s.sumOfDiceHandler())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cosmetic_roll",
		Description: "Draws from the secondary stream without touching gameplay determinism",
	}, s.cosmeticRollHandler())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "trace_enable",
		Description: "Starts recording primary-stream draws from sequence zero",
	}, s.traceEnableHandler())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "trace_disable",
		Description: "Stops recording draws, keeping recorded entries",
	}, s.traceDisableHandler())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "trace_clear",
		Description: "Drops recorded entries without changing the enabled flag",
	}, s.traceClearHandler())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "trace_export",
		Description: "Returns the surviving trace window for cross-engine diffing",
	}, s.traceExportHandler())
}

func (s *Server) seedStreamsHandler() mcp.ToolHandlerFor[SeedStreamsInput, SeedStreamsResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input SeedStreamsInput) (*mcp.CallToolResult, SeedStreamsResult, error) {
		seed := uint64(0)
		if input.Seed != nil {
			seed = *input.Seed
		} else {
			generated, err := random.NewSeed()
			if err != nil {
				return nil, SeedStreamsResult{}, fmt.Errorf("generate seed: %w", err)
			}
			seed = generated
		}
		s.withSession(func(sess *session.Session) {
			sess.Seed(seed)
		})
		return nil, SeedStreamsResult{Seed: seed}, nil
	}
}

func (s *Server) rollBoundedHandler() mcp.ToolHandlerFor[RollInput, RollResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RollInput) (*mcp.CallToolResult, RollResult, error) {
		var value int64
		s.withSession(func(sess *session.Session) {
			value = sess.RollBounded(input.Sides)
		})
		return nil, RollResult{Value: value}, nil
	}
}

func (s *Server) rollDieHandler() mcp.ToolHandlerFor[RollInput, RollResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RollInput) (*mcp.CallToolResult, RollResult, error) {
		var value int64
		s.withSession(func(sess *session.Session) {
			value = sess.RollDie(input.Sides)
		})
		return nil, RollResult{Value: value}, nil
	}
}

func (s *Server) sumOfDiceHandler() mcp.ToolHandlerFor[SumOfDiceInput, SumOfDiceResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input SumOfDiceInput) (*mcp.CallToolResult, SumOfDiceResult, error) {
		var total int64
		s.withSession(func(sess *session.Session) {
			total = sess.SumOfDice(input.Count, input.Sides)
		})
		return nil, SumOfDiceResult{Total: total}, nil
	}
}

func (s *Server) cosmeticRollHandler() mcp.ToolHandlerFor[RollInput, RollResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RollInput) (*mcp.CallToolResult, RollResult, error) {
		var value int64
		s.withSession(func(sess *session.Session) {
			value = sess.CosmeticRoll(input.Sides)
		})
		return nil, RollResult{Value: value}, nil
	}
}

func (s *Server) traceEnableHandler() mcp.ToolHandlerFor[TraceControlInput, TraceControlResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ TraceControlInput) (*mcp.CallToolResult, TraceControlResult, error) {
		s.withSession(func(sess *session.Session) {
			sess.EnableTracing()
		})
		return nil, TraceControlResult{Enabled: true}, nil
	}
}

func (s *Server) traceDisableHandler() mcp.ToolHandlerFor[TraceControlInput, TraceControlResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ TraceControlInput) (*mcp.CallToolResult, TraceControlResult, error) {
		s.withSession(func(sess *session.Session) {
			sess.DisableTracing()
		})
		return nil, TraceControlResult{Enabled: false}, nil
	}
}

func (s *Server) traceClearHandler() mcp.ToolHandlerFor[TraceControlInput, TraceControlResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ TraceControlInput) (*mcp.CallToolResult, TraceControlResult, error) {
		var enabled bool
		s.withSession(func(sess *session.Session) {
			sess.ClearTrace()
			enabled = sess.TracingEnabled()
		})
		return nil, TraceControlResult{Enabled: enabled}, nil
	}
}

func (s *Server) traceExportHandler() mcp.ToolHandlerFor[TraceExportInput, TraceExportResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ TraceExportInput) (*mcp.CallToolResult, TraceExportResult, error) {
		var entries []trace.Entry
		s.withSession(func(sess *session.Session) {
			entries = sess.ExportTrace()
		})
		return nil, TraceExportResult{Entries: entries}, nil
	}
}
