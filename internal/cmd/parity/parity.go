// Package parity parses parity command flags and drives one scenario
// replay: load script, replay against a fresh session, optionally
// archive the trace, and optionally diff it against a reference trace.
package parity

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/louisbranch/parityroll/internal/compare"
	entrypoint "github.com/louisbranch/parityroll/internal/platform/cmd"
	"github.com/louisbranch/parityroll/internal/random"
	"github.com/louisbranch/parityroll/internal/scenario"
	"github.com/louisbranch/parityroll/internal/session"
	"github.com/louisbranch/parityroll/internal/storage/sqlite"
	"github.com/louisbranch/parityroll/internal/trace"
)

// Config holds parity command configuration.
type Config struct {
	ScenarioPath string `env:"PARITYROLL_SCENARIO"`
	DBPath       string `env:"PARITYROLL_DB_PATH"`
	Label        string `env:"PARITYROLL_LABEL" envDefault:"go-engine"`
	Seed         uint64 `env:"PARITYROLL_SEED"`

	// Flag-only knobs for the diff workflow.
	CompareRun  int64
	CompareFile string
	Archive     bool
	ListRuns    bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.ScenarioPath, "scenario", cfg.ScenarioPath, "Path to the Lua scenario script")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite run archive path (enables -archive, -compare-run, -list)")
	fs.StringVar(&cfg.Label, "label", cfg.Label, "Engine label recorded with archived runs")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Default seed; 0 generates a random one")
	fs.Int64Var(&cfg.CompareRun, "compare-run", 0, "Archived run id to diff the replay against")
	fs.StringVar(&cfg.CompareFile, "compare-file", "", "JSON trace file to diff the replay against")
	fs.BoolVar(&cfg.Archive, "archive", false, "Archive the replay trace in the run database")
	fs.BoolVar(&cfg.ListRuns, "list", false, "List archived runs and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the parity workflow described by cfg.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceParity, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	var store *sqlite.Store
	if needsStore(cfg) {
		if strings.TrimSpace(cfg.DBPath) == "" {
			return fmt.Errorf("-db is required with -archive, -compare-run, or -list")
		}
		opened, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		store = opened
	}
	defer store.Close()

	if cfg.ListRuns {
		return listRuns(ctx, store)
	}

	if strings.TrimSpace(cfg.ScenarioPath) == "" {
		return fmt.Errorf("scenario path is required")
	}
	sc, err := scenario.LoadFile(cfg.ScenarioPath)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed, err = random.NewSeed()
		if err != nil {
			return fmt.Errorf("generate seed: %w", err)
		}
		log.Printf("generated seed %d", seed)
	}

	result, err := scenario.Run(ctx, session.New(seed), sc, seed)
	if err != nil {
		return err
	}
	log.Printf("scenario %q replayed: seed=%d draws=%d traced=%d",
		result.Scenario, result.Seed, len(result.Values), len(result.Trace))

	if cfg.Archive {
		runID, err := store.SaveRun(ctx, cfg.Label, result.Scenario, result.Seed, result.Trace)
		if err != nil {
			return err
		}
		log.Printf("archived run %d (label %q)", runID, cfg.Label)
	}

	reference, refName, err := loadReference(ctx, cfg, store)
	if err != nil {
		return err
	}
	if refName == "" {
		return nil
	}

	if div := compare.Traces(result.Trace, reference); div != nil {
		reportDivergence(refName, div)
		return fmt.Errorf("traces diverge at call %d", div.CallIndex)
	}
	log.Printf("traces identical over %d calls (vs %s)", len(result.Trace), refName)
	return nil
}

func needsStore(cfg Config) bool {
	return cfg.Archive || cfg.CompareRun != 0 || cfg.ListRuns
}

func listRuns(ctx context.Context, store *sqlite.Store) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%d\t%s\t%s\tseed=%d\t%s\n",
			r.ID, r.Label, r.Scenario, r.Seed, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// loadReference resolves the trace to diff against, from either an
// archived run or a foreign JSON export. Returns an empty name when no
// comparison was requested.
func loadReference(ctx context.Context, cfg Config, store *sqlite.Store) ([]trace.Entry, string, error) {
	switch {
	case cfg.CompareRun != 0:
		run, entries, err := store.LoadRun(ctx, cfg.CompareRun)
		if err != nil {
			return nil, "", err
		}
		return entries, fmt.Sprintf("run %d (%s)", run.ID, run.Label), nil
	case cfg.CompareFile != "":
		data, err := os.ReadFile(cfg.CompareFile)
		if err != nil {
			return nil, "", fmt.Errorf("read trace file: %w", err)
		}
		entries, err := compare.ParseJSON(data)
		if err != nil {
			return nil, "", err
		}
		return entries, cfg.CompareFile, nil
	default:
		return nil, "", nil
	}
}

func reportDivergence(refName string, div *compare.Divergence) {
	log.Printf("divergence at call %d vs %s: %s", div.CallIndex, refName, div.Description)
	for _, e := range div.LeftContext {
		log.Printf("  left  seq=%d %s(%d) -> %d", e.Seq, e.Op, e.Arg, e.Result)
	}
	for _, e := range div.RightContext {
		log.Printf("  right seq=%d %s(%d) -> %d", e.Seq, e.Op, e.Arg, e.Result)
	}
}
