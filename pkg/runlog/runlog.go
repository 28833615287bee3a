// Package runlog records run history into SQLite.
//
// Recorder implements flow.Observer: attached to a run it persists one row
// per run and one row per executed task. The engine never reads the log
// back; it exists for inspection and tooling, not for resuming execution.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Recorder persists run history. Safe for concurrent use; one Recorder may
// observe any number of runs and workflows.
type Recorder struct {
	db *sql.DB
}

// Open creates a Recorder backed by the SQLite database at path, creating
// the schema if needed. Use ":memory:" for a throwaway in-memory log.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection for writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	r := &Recorder{db: db}
	if err := r.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

func (r *Recorder) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			goals TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			duration_us INTEGER,
			failed_goals INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS task_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			task TEXT NOT NULL,
			duration_us INTEGER NOT NULL,
			error TEXT,
			finished_at DATETIME NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_task_runs_run_id ON task_runs(run_id)`,
	}
	for _, m := range migrations {
		if _, err := r.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("runlog: migration failed: %w", err)
		}
	}
	return nil
}

// RunStarted implements flow.Observer.
func (r *Recorder) RunStarted(runID string, goals []string) {
	_, err := r.db.Exec(
		`INSERT INTO runs (id, goals, started_at) VALUES (?, ?, ?)`,
		runID, strings.Join(goals, ","), time.Now().UTC(),
	)
	if err != nil {
		log.Printf("runlog: recording run %s start: %v", runID, err)
	}
}

// TaskStarted implements flow.Observer. Start events are not persisted;
// the task row is written once on finish.
func (r *Recorder) TaskStarted(runID, task string) {}

// TaskFinished implements flow.Observer.
func (r *Recorder) TaskFinished(runID, task string, d time.Duration, err error) {
	var errText sql.NullString
	if err != nil {
		errText = sql.NullString{String: err.Error(), Valid: true}
	}
	_, dbErr := r.db.Exec(
		`INSERT INTO task_runs (run_id, task, duration_us, error, finished_at) VALUES (?, ?, ?, ?, ?)`,
		runID, task, d.Microseconds(), errText, time.Now().UTC(),
	)
	if dbErr != nil {
		log.Printf("runlog: recording task %s/%s: %v", runID, task, dbErr)
	}
}

// RunFinished implements flow.Observer.
func (r *Recorder) RunFinished(runID string, d time.Duration, failed int) {
	_, err := r.db.Exec(
		`UPDATE runs SET finished_at = ?, duration_us = ?, failed_goals = ? WHERE id = ?`,
		time.Now().UTC(), d.Microseconds(), failed, runID,
	)
	if err != nil {
		log.Printf("runlog: recording run %s finish: %v", runID, err)
	}
}

// RunRecord is one recorded run.
type RunRecord struct {
	ID          string
	Goals       []string
	StartedAt   time.Time
	FinishedAt  time.Time
	Duration    time.Duration
	FailedGoals int
}

// TaskRecord is one recorded task execution.
type TaskRecord struct {
	RunID      string
	Task       string
	Duration   time.Duration
	Error      string
	FinishedAt time.Time
}

// Runs returns every recorded run, most recent first.
func (r *Recorder) Runs(ctx context.Context) ([]RunRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, goals, started_at, finished_at, duration_us, failed_goals
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var goals string
		var finished sql.NullTime
		var durUS, failed sql.NullInt64
		if err := rows.Scan(&rec.ID, &goals, &rec.StartedAt, &finished, &durUS, &failed); err != nil {
			return nil, err
		}
		if goals != "" {
			rec.Goals = strings.Split(goals, ",")
		}
		if finished.Valid {
			rec.FinishedAt = finished.Time
		}
		rec.Duration = time.Duration(durUS.Int64) * time.Microsecond
		rec.FailedGoals = int(failed.Int64)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Tasks returns the task executions recorded for one run, in completion
// order.
func (r *Recorder) Tasks(ctx context.Context, runID string) ([]TaskRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, task, duration_us, error, finished_at
		 FROM task_runs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaskRecord
	for rows.Next() {
		var rec TaskRecord
		var durUS int64
		var errText sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Task, &durUS, &errText, &rec.FinishedAt); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durUS) * time.Microsecond
		rec.Error = errText.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
