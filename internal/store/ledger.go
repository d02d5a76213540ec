package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunStatus is the lifecycle state of a run or stage.
type RunStatus string

const (
	StatusRunning RunStatus = "running"
	StatusDone    RunStatus = "done"
	StatusSkipped RunStatus = "skipped"
	StatusFailed  RunStatus = "failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID         string    `json:"id"`
	Person     string    `json:"person"`
	Status     RunStatus `json:"status"`
	StartedAt  string    `json:"started_at"`
	FinishedAt string    `json:"finished_at,omitempty"`
}

// Stage is the outcome of one pipeline stage within a run.
type Stage struct {
	RunID     string    `json:"run_id"`
	Name      string    `json:"name"`
	Status    RunStatus `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// Ledger records runs and stage outcomes in SQLite. A nil *Ledger accepts
// every call and records nothing.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// OpenLedger opens (or creates) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("ledger: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initLedgerSchema(db); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ledger: init schema: %w", err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

func initLedgerSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		person      TEXT NOT NULL,
		status      TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT
	)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS stages (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL REFERENCES runs(id),
		name       TEXT NOT NULL,
		status     TEXT NOT NULL,
		detail     TEXT,
		created_at TEXT NOT NULL
	)`)
	return err
}

// stampLayout is fixed width so timestamps sort lexically.
const stampLayout = "2006-01-02T15:04:05.000000Z"

func (l *Ledger) stamp() string {
	return l.now().UTC().Format(stampLayout)
}

// StartRun inserts a running run for person and returns its id.
func (l *Ledger) StartRun(ctx context.Context, person string) (string, error) {
	id := uuid.NewString()
	if l == nil {
		return id, nil
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, person, status, started_at) VALUES (?, ?, ?, ?)`,
		id, person, StatusRunning, l.stamp())
	if err != nil {
		return "", fmt.Errorf("ledger: start run: %w", err)
	}
	return id, nil
}

// RecordStage appends a stage outcome to runID.
func (l *Ledger) RecordStage(ctx context.Context, runID, name string, status RunStatus, detail string) error {
	if l == nil {
		return nil
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO stages (run_id, name, status, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, name, status, detail, l.stamp())
	if err != nil {
		return fmt.Errorf("ledger: record stage %s: %w", name, err)
	}
	return nil
}

// FinishRun sets the final status of runID.
func (l *Ledger) FinishRun(ctx context.Context, runID string, status RunStatus) error {
	if l == nil {
		return nil
	}
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status=?, finished_at=? WHERE id=?`, status, l.stamp(), runID)
	if err != nil {
		return fmt.Errorf("ledger: finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ledger: finish run %s: %w", runID, sql.ErrNoRows)
	}
	return nil
}

// Runs lists the most recent runs, newest first.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	if l == nil {
		return []Run{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, person, status, started_at, finished_at FROM runs
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var finished sql.NullString
		if err := rows.Scan(&r.ID, &r.Person, &r.Status, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("ledger: scan run: %w", err)
		}
		r.FinishedAt = finished.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stages returns the stage outcomes of runID in insertion order.
func (l *Ledger) Stages(ctx context.Context, runID string) ([]Stage, error) {
	if l == nil {
		return []Stage{}, nil
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, name, status, detail, created_at FROM stages
		 WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list stages: %w", err)
	}
	defer rows.Close()

	stages := []Stage{}
	for rows.Next() {
		var s Stage
		var detail sql.NullString
		if err := rows.Scan(&s.RunID, &s.Name, &s.Status, &detail, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan stage: %w", err)
		}
		s.Detail = detail.String
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}

// IsMissingRun reports whether err came from finishing an unknown run.
func IsMissingRun(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
