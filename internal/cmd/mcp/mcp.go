// Package mcp parses MCP command flags and starts the tool server.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/parityroll/internal/platform/cmd"
	"github.com/louisbranch/parityroll/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Seed uint64 `env:"PARITYROLL_MCP_SEED"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Initial seed for both RNG streams")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the parity tools over stdio until the context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.New(cfg.Seed).Run(ctx)
	})
}
