package store

import (
	"context"
	"time"

	"github.com/tnicklin/timebudget/models"
)

// Config holds store configuration.
type Config struct {
	// Path is the SQLite database file. ":memory:" keeps the audit
	// log in memory, which is what the tests use.
	Path string `yaml:"path"`
}

// ScopeSummary is one row of the run history listing.
type ScopeSummary struct {
	ScopeID   string
	Budget    time.Duration
	Spent     time.Duration
	StartedAt string
	CallCount int64
	Completed int64
}

// Store persists the outcomes of budgeted operations. It is an audit
// log of finished runs, not live timing state: scopes themselves die
// with the process.
type Store interface {
	Open(ctx context.Context) error
	Close() error

	SaveReport(ctx context.Context, report models.Report) error
	GetReport(ctx context.Context, scopeID string) (*models.Report, error)
	ListScopes(ctx context.Context, limit int) ([]ScopeSummary, error)
	ListCallsByScope(ctx context.Context, scopeID string) ([]models.CallResult, error)
}
