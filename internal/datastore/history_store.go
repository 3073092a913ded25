package datastore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// RunRecord is one row of the runs table
type RunRecord struct {
	ID          int64
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time // zero while the run is in progress
	Status      string
	InputPath   string
	OutputDir   string
	Alive       int
	Endpoints   int
	Secrets     int
	FailedItems int
}

// RunCounts are the totals written when a run finishes
type RunCounts struct {
	Alive       int
	Endpoints   int
	Secrets     int
	FailedItems int
}

// ItemFailure is one failed per-URL invocation
type ItemFailure struct {
	RunID    string
	Stage    string
	URL      string
	ExitCode int
	Reason   string
}

// HistoryStore persists pipeline runs and their failed items in sqlite.
type HistoryStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL UNIQUE,
	started_at INTEGER NOT NULL,
	finished_at INTEGER,
	status TEXT NOT NULL,
	input_path TEXT NOT NULL,
	output_dir TEXT NOT NULL,
	alive INTEGER NOT NULL DEFAULT 0,
	endpoints INTEGER NOT NULL DEFAULT 0,
	secrets INTEGER NOT NULL DEFAULT 0,
	failed_items INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS item_failures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	url TEXT NOT NULL,
	exit_code INTEGER NOT NULL,
	reason TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_item_failures_run_id ON item_failures(run_id);
`

// NewHistoryStore opens (creating if needed) the database at dbPath and
// ensures the schema exists.
func NewHistoryStore(dbPath string, logger zerolog.Logger) (*HistoryStore, error) {
	logger = logger.With().Str("component", "HistoryStore").Logger()

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, errorwrapper.WrapErrorf(err, "failed to create history database directory %s", dbDir)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errorwrapper.WrapErrorf(err, "sql.Open failed for %s", dbPath)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	store := &HistoryStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, errorwrapper.WrapError(err, "failed to initialize schema")
	}

	logger.Debug().Str("path", dbPath).Msg("History database ready")
	return store, nil
}

func (s *HistoryStore) initSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRunStart inserts a run with status STARTED and returns its row ID.
func (s *HistoryStore) RecordRunStart(ctx context.Context, runID, inputPath, outputDir string, startedAt time.Time) (int64, error) {
	query := `INSERT INTO runs (run_id, started_at, status, input_path, output_dir) VALUES (?, ?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, runID, startedAt.UnixMilli(), "STARTED", inputPath, outputDir)
	if err != nil {
		return 0, errorwrapper.WrapError(err, "failed to insert run start record")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, errorwrapper.WrapError(err, "failed to get last insert ID")
	}
	s.logger.Debug().Int64("db_id", id).Str("run_id", runID).Msg("Recorded run start")
	return id, nil
}

// RecordItemFailures stores failures in a single transaction
func (s *HistoryStore) RecordItemFailures(ctx context.Context, failures []ItemFailure) error {
	if len(failures) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO item_failures (run_id, stage, url, exit_code, reason) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to prepare failure insert")
	}
	defer stmt.Close()

	for _, f := range failures {
		if _, err := stmt.ExecContext(ctx, f.RunID, f.Stage, f.URL, f.ExitCode, f.Reason); err != nil {
			return errorwrapper.WrapErrorf(err, "failed to insert failure for %s", f.URL)
		}
	}

	if err := tx.Commit(); err != nil {
		return errorwrapper.WrapError(err, "failed to commit failures")
	}
	s.logger.Debug().Int("count", len(failures)).Msg("Recorded item failures")
	return nil
}

// RecordRunCompletion sets the final status and totals of a run.
func (s *HistoryStore) RecordRunCompletion(ctx context.Context, runID string, finishedAt time.Time, status string, counts RunCounts) error {
	query := `UPDATE runs SET finished_at = ?, status = ?, alive = ?, endpoints = ?, secrets = ?, failed_items = ? WHERE run_id = ?`
	result, err := s.db.ExecContext(ctx, query, finishedAt.UnixMilli(), status, counts.Alive, counts.Endpoints, counts.Secrets, counts.FailedItems, runID)
	if err != nil {
		return errorwrapper.WrapErrorf(err, "failed to update run completion for %s", runID)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errorwrapper.NewError("run %s not found", runID)
	}
	s.logger.Debug().Str("run_id", runID).Str("status", status).Msg("Recorded run completion")
	return nil
}

// ListRuns returns up to limit runs, most recent first. A non-positive
// limit returns every run.
func (s *HistoryStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, run_id, started_at, finished_at, status, input_path, output_dir, alive, endpoints, secrets, failed_items
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			r          RunRecord
			startedAt  int64
			finishedAt sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.RunID, &startedAt, &finishedAt, &r.Status, &r.InputPath, &r.OutputDir,
			&r.Alive, &r.Endpoints, &r.Secrets, &r.FailedItems); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to scan run row")
		}
		r.StartedAt = time.UnixMilli(startedAt)
		if finishedAt.Valid {
			r.FinishedAt = time.UnixMilli(finishedAt.Int64)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListItemFailures returns the failures recorded for runID
func (s *HistoryStore) ListItemFailures(ctx context.Context, runID string) ([]ItemFailure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, stage, url, exit_code, reason FROM item_failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to query item failures")
	}
	defer rows.Close()

	var failures []ItemFailure
	for rows.Next() {
		var f ItemFailure
		if err := rows.Scan(&f.RunID, &f.Stage, &f.URL, &f.ExitCode, &f.Reason); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to scan failure row")
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// GetRun returns the run with runID. A missing run yields sql.ErrNoRows.
func (s *HistoryStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	var (
		r          RunRecord
		startedAt  int64
		finishedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, run_id, started_at, finished_at, status, input_path, output_dir, alive, endpoints, secrets, failed_items
		FROM runs WHERE run_id = ?`, runID).
		Scan(&r.ID, &r.RunID, &startedAt, &finishedAt, &r.Status, &r.InputPath, &r.OutputDir,
			&r.Alive, &r.Endpoints, &r.Secrets, &r.FailedItems)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, errorwrapper.WrapErrorf(err, "failed to query run %s", runID)
	}
	r.StartedAt = time.UnixMilli(startedAt)
	if finishedAt.Valid {
		r.FinishedAt = time.UnixMilli(finishedAt.Int64)
	}
	return &r, nil
}
