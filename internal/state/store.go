// Package state tracks pipeline run history in a local SQLite database.
// Each run records the source file, the modeling strategy, per-table row
// counts, and data quality check outcomes.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunStatus represents the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is a single pipeline execution.
type Run struct {
	ID          string
	SourceFile  string
	Strategy    string
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// TableCount records the row count of one materialized table in a run.
type TableCount struct {
	TableName string
	Kind      string
	RowCount  int
}

// CheckOutcome records one data quality check result in a run.
type CheckOutcome struct {
	TableName string
	CheckName string
	Passed    bool
	Message   string
}

// Store persists run history in SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore creates a new store instance. The logger may be nil.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Open opens the SQLite database at path, creating parent directories as
// needed. Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps in-memory databases coherent and avoids
	// writer contention on file databases.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateRun inserts a new running pipeline run and returns it.
func (s *Store) CreateRun(sourceFile, strategy string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:         uuid.New().String(),
		SourceFile: sourceFile,
		Strategy:   strategy,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	s.logger.Debug("creating run",
		slog.String("id", run.ID),
		slog.String("source_file", sourceFile))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, source_file, strategy, status, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.SourceFile, run.Strategy, string(run.Status), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run as completed or failed.
func (s *Store) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errVal any
	if errMsg != "" {
		errVal = errMsg
	}

	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(status), errVal, now, id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// RecordTableCount records the row count of a materialized table.
func (s *Store) RecordTableCount(runID string, tc TableCount) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO run_tables (run_id, table_name, kind, row_count)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (run_id, table_name) DO UPDATE SET
		   kind = excluded.kind, row_count = excluded.row_count`,
		runID, tc.TableName, tc.Kind, tc.RowCount)
	if err != nil {
		return fmt.Errorf("failed to record table count: %w", err)
	}
	return nil
}

// RecordCheck records one data quality check outcome.
func (s *Store) RecordCheck(runID string, c CheckOutcome) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	passed := 0
	if c.Passed {
		passed = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO run_checks (run_id, table_name, check_name, passed, message)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, c.TableName, c.CheckName, passed, c.Message)
	if err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, source_file, strategy, status, error, started_at, completed_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, source_file, strategy, status, error, started_at, completed_at
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// TableCounts retrieves the per-table row counts recorded for a run.
func (s *Store) TableCounts(runID string) ([]TableCount, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT table_name, kind, row_count FROM run_tables
		 WHERE run_id = ? ORDER BY table_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list table counts: %w", err)
	}
	defer rows.Close()

	var counts []TableCount
	for rows.Next() {
		var tc TableCount
		if err := rows.Scan(&tc.TableName, &tc.Kind, &tc.RowCount); err != nil {
			return nil, fmt.Errorf("failed to scan table count: %w", err)
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// Checks retrieves the check outcomes recorded for a run.
func (s *Store) Checks(runID string) ([]CheckOutcome, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT table_name, check_name, passed, message FROM run_checks
		 WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var checks []CheckOutcome
	for rows.Next() {
		var c CheckOutcome
		var passed int
		if err := rows.Scan(&c.TableName, &c.CheckName, &passed, &c.Message); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		c.Passed = passed != 0
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		status      string
		errMsg      sql.NullString
		completedAt sql.NullTime
	)
	if err := row.Scan(&run.ID, &run.SourceFile, &run.Strategy, &status,
		&errMsg, &run.StartedAt, &completedAt); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
