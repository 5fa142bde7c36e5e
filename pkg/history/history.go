package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/geteduroam/discogen/pkg/models"
)

// Ledger records generator runs.
type Ledger interface {
	// Record stores a run. An empty ID is filled in.
	Record(ctx context.Context, rec *models.RunRecord) error
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]models.RunRecord, error)
	// LastPublished returns the newest run that advanced the sequence number.
	LastPublished(ctx context.Context) (models.RunRecord, bool, error)
	// Cleanup deletes runs started before cutoff.
	Cleanup(ctx context.Context, cutoff time.Time) (int64, error)
	// Close releases resources.
	Close() error
}

// SQLiteLedger implements Ledger with a SQLite database.
type SQLiteLedger struct {
	db *sql.DB
}

var _ Ledger = (*SQLiteLedger)(nil)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	previous_seq INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	changed INTEGER NOT NULL,
	versions TEXT NOT NULL,
	instances INTEGER NOT NULL,
	requests INTEGER NOT NULL,
	network_requests INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// New opens the ledger at dbPath and runs auto-migration.
func New(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	// Ledgers written before --force existed lack the column.
	if !columnExists(db, "runs", "forced") {
		if _, err := db.Exec(`ALTER TABLE runs ADD COLUMN forced INTEGER NOT NULL DEFAULT 0`); err != nil {
			db.Close()
			return nil, fmt.Errorf("add forced column: %w", err)
		}
	}

	return &SQLiteLedger{db: db}, nil
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}

// Record stores a run.
func (l *SQLiteLedger) Record(ctx context.Context, rec *models.RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, previous_seq, seq, changed, forced, versions, instances, requests, network_requests)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt.UTC(), rec.FinishedAt.UTC(), rec.PreviousSeq, rec.Seq, rec.Changed, rec.Forced,
		rec.Versions, rec.Instances, rec.Requests, rec.NetworkRequests,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

const selectRuns = `SELECT id, started_at, finished_at, previous_seq, seq, changed, forced, versions, instances, requests, network_requests FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (models.RunRecord, error) {
	var r models.RunRecord
	err := s.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.PreviousSeq, &r.Seq, &r.Changed, &r.Forced,
		&r.Versions, &r.Instances, &r.Requests, &r.NetworkRequests)
	return r, err
}

// Recent returns up to limit runs, newest first.
func (l *SQLiteLedger) Recent(ctx context.Context, limit int) ([]models.RunRecord, error) {
	rows, err := l.db.QueryContext(ctx, selectRuns+` ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastPublished returns the newest run that advanced the sequence number.
func (l *SQLiteLedger) LastPublished(ctx context.Context) (models.RunRecord, bool, error) {
	r, err := scanRun(l.db.QueryRowContext(ctx, selectRuns+` WHERE seq <> previous_seq ORDER BY started_at DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return models.RunRecord{}, false, nil
	}
	if err != nil {
		return models.RunRecord{}, false, fmt.Errorf("query last published run: %w", err)
	}
	return r, true, nil
}

// Cleanup deletes runs started before cutoff.
func (l *SQLiteLedger) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("history cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
