// Package sqlite provides the SQLite-backed archive of parity runs and
// their traces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/parityroll/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/parityroll/internal/storage/sqlite/migrations"
	"github.com/louisbranch/parityroll/internal/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	_ "modernc.org/sqlite"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Run is one archived replay: which scenario ran, under which engine
// label, from which seed.
type Run struct {
	ID        int64
	Label     string
	Scenario  string
	Seed      uint64
	CreatedAt time.Time
}

// Store provides the SQLite-backed run archive.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

// Open opens a run archive at the provided path, applying embedded
// migrations before the store is handed to higher layers.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.RunsFS, "runs"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, clock: time.Now}, nil
}

// Close closes the underlying SQLite database.
//
// Close is intentionally nil-safe so callers can defer it in all
// startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun archives one replay and its trace in a single transaction and
// returns the new run's id.
func (s *Store) SaveRun(ctx context.Context, label, scenarioName string, seed uint64, entries []trace.Entry) (int64, error) {
	tracer := otel.Tracer("parityroll/storage")
	ctx, span := tracer.Start(ctx, "store.save_run")
	span.SetAttributes(
		attribute.String("run.label", label),
		attribute.Int("run.trace_entries", len(entries)),
	)
	defer span.End()

	if strings.TrimSpace(label) == "" {
		return 0, fmt.Errorf("run label is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save run: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO parity_runs (label, scenario, seed, created_at) VALUES (?, ?, ?, ?)",
		label, scenarioName, int64(seed), toMillis(s.clock()),
	)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO trace_entries (run_id, seq, op, arg, result) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare trace insert: %w", err)
	}
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, runID, int64(e.Seq), e.Op, int64(e.Arg), int64(e.Result)); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert trace entry %d: %w", e.Seq, err)
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("close trace insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save run: %w", err)
	}
	return runID, nil
}

// LoadRun returns an archived run and its trace in sequence order.
func (s *Store) LoadRun(ctx context.Context, runID int64) (Run, []trace.Entry, error) {
	var (
		run       Run
		seed      int64
		createdAt int64
	)
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, label, scenario, seed, created_at FROM parity_runs WHERE id = ?", runID)
	if err := row.Scan(&run.ID, &run.Label, &run.Scenario, &seed, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, nil, fmt.Errorf("run %d not found", runID)
		}
		return Run{}, nil, fmt.Errorf("load run %d: %w", runID, err)
	}
	run.Seed = uint64(seed)
	run.CreatedAt = fromMillis(createdAt)

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT seq, op, arg, result FROM trace_entries WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load trace for run %d: %w", runID, err)
	}
	defer rows.Close()

	var entries []trace.Entry
	for rows.Next() {
		var seq, arg, result int64
		var op string
		if err := rows.Scan(&seq, &op, &arg, &result); err != nil {
			return Run{}, nil, fmt.Errorf("scan trace entry: %w", err)
		}
		entries = append(entries, trace.Entry{
			Seq:    uint64(seq),
			Op:     op,
			Arg:    uint64(arg),
			Result: uint64(result),
		})
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate trace entries: %w", err)
	}
	return run, entries, nil
}

// ListRuns returns all archived runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT id, label, scenario, seed, created_at FROM parity_runs ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			seed      int64
			createdAt int64
		)
		if err := rows.Scan(&run.ID, &run.Label, &run.Scenario, &seed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Seed = uint64(seed)
		run.CreatedAt = fromMillis(createdAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
