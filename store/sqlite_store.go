package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tnicklin/timebudget/logger"
	"github.com/tnicklin/timebudget/models"
)

var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	scope_id        TEXT PRIMARY KEY,
	total_budget_ns INTEGER NOT NULL,
	spent_ns        INTEGER NOT NULL,
	started_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS calls (
	scope_id            TEXT NOT NULL,
	seq                 INTEGER NOT NULL,
	url                 TEXT NOT NULL,
	outcome             TEXT NOT NULL,
	status_code         INTEGER NOT NULL DEFAULT 0,
	assigned_timeout_ns INTEGER NOT NULL,
	elapsed_ns          INTEGER NOT NULL,
	error               TEXT NOT NULL DEFAULT '',
	started_at          TEXT NOT NULL,
	PRIMARY KEY (scope_id, seq),
	FOREIGN KEY (scope_id) REFERENCES reports(scope_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_reports_started_at ON reports(started_at);
`

// SQLiteStore is a file-backed audit log of budgeted runs.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	logger logger.Logger
}

// Params holds configuration for creating a SQLiteStore.
type Params struct {
	Path   string
	Logger logger.Logger
}

// NewSQLiteStore creates a store persisting to the given path. Use
// ":memory:" for an in-memory store.
func NewSQLiteStore(p Params) *SQLiteStore {
	return &SQLiteStore{
		path:   p.Path,
		logger: p.Logger,
	}
}

func (s *SQLiteStore) log() logger.Logger {
	if s.logger == nil {
		return logger.NewNop()
	}
	return s.logger
}

// Open connects to the database and creates the schema.
func (s *SQLiteStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	if s.path == "" {
		return errors.New("store: path is required")
	}

	if s.path != ":memory:" {
		if dir := filepath.Dir(s.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("store: create data dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(s.path))
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return fmt.Errorf("store: apply schema: %w", err)
	}

	s.db = db
	s.log().DebugW("store opened", "path", s.path)
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SaveReport writes a finished run and all of its call results in one
// transaction.
func (s *SQLiteStore) SaveReport(ctx context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New("store: not open")
	}
	if report.ScopeID == "" {
		return errors.New("store: report has no scope id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (scope_id, total_budget_ns, spent_ns, started_at) VALUES (?, ?, ?, ?)`,
		report.ScopeID,
		report.TotalBudget.Nanoseconds(),
		report.Spent.Nanoseconds(),
		report.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM calls WHERE scope_id = ?`, report.ScopeID); err != nil {
		return err
	}

	for _, call := range report.Calls {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO calls (scope_id, seq, url, outcome, status_code, assigned_timeout_ns, elapsed_ns, error, started_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ScopeID,
			call.Seq,
			call.URL,
			string(call.Outcome),
			call.StatusCode,
			call.AssignedTimeout.Nanoseconds(),
			call.Elapsed.Nanoseconds(),
			call.Err,
			call.StartedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	s.log().DebugW("report saved",
		"scope", report.ScopeID,
		"calls", len(report.Calls),
		"budget", report.TotalBudget,
		"spent", report.Spent,
	)
	return nil
}

// GetReport loads one run with its calls.
func (s *SQLiteStore) GetReport(ctx context.Context, scopeID string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store: not open")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT scope_id, total_budget_ns, spent_ns, started_at FROM reports WHERE scope_id = ?`, scopeID)

	var rep models.Report
	var budgetNS, spentNS int64
	var startedAt string
	if err := row.Scan(&rep.ScopeID, &budgetNS, &spentNS, &startedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("store: no report for scope %s", scopeID)
		}
		return nil, err
	}
	rep.TotalBudget = time.Duration(budgetNS)
	rep.Spent = time.Duration(spentNS)
	rep.StartedAt = parseStoredTime(startedAt)

	calls, err := s.listCallsLocked(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	rep.Calls = calls
	return &rep, nil
}

// ListScopes returns the most recent runs, newest first.
func (s *SQLiteStore) ListScopes(ctx context.Context, limit int) ([]ScopeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store: not open")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.scope_id, r.total_budget_ns, r.spent_ns, r.started_at,
		       COUNT(c.seq),
		       COALESCE(SUM(CASE WHEN c.outcome = 'ok' THEN 1 ELSE 0 END), 0)
		FROM reports r
		LEFT JOIN calls c ON c.scope_id = r.scope_id
		GROUP BY r.scope_id
		ORDER BY r.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScopeSummary
	for rows.Next() {
		var row ScopeSummary
		if err = rows.Scan(&row.ScopeID, &row.Budget, &row.Spent, &row.StartedAt, &row.CallCount, &row.Completed); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListCallsByScope returns a run's calls in sequence order.
func (s *SQLiteStore) ListCallsByScope(ctx context.Context, scopeID string) ([]models.CallResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store: not open")
	}
	return s.listCallsLocked(ctx, scopeID)
}

func (s *SQLiteStore) listCallsLocked(ctx context.Context, scopeID string) ([]models.CallResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scope_id, seq, url, outcome, status_code, assigned_timeout_ns, elapsed_ns, error, started_at
		FROM calls WHERE scope_id = ? ORDER BY seq`, scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CallResult
	for rows.Next() {
		var call models.CallResult
		var outcome, startedAt string
		var assignedNS, elapsedNS int64
		if err = rows.Scan(&call.ScopeID, &call.Seq, &call.URL, &outcome, &call.StatusCode, &assignedNS, &elapsedNS, &call.Err, &startedAt); err != nil {
			return nil, err
		}
		call.Outcome = models.CallOutcome(outcome)
		call.AssignedTimeout = time.Duration(assignedNS)
		call.Elapsed = time.Duration(elapsedNS)
		call.StartedAt = parseStoredTime(startedAt)
		out = append(out, call)
	}
	return out, rows.Err()
}

func parseStoredTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}
