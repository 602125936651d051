package fetch

import (
	"context"
	"time"

	"github.com/tnicklin/timebudget/models"
)

// Fetcher runs one budgeted multi-call operation: a sequence of GETs
// that share a single time budget.
type Fetcher interface {
	// FetchAll issues one GET per url, in order, under one budget
	// scope opened with the given total. It returns a report covering
	// every url — calls refused on an exhausted budget included — and
	// an error matching budget.ErrExpired when the budget ran out
	// before the list was done.
	FetchAll(ctx context.Context, total time.Duration, urls []string) (models.Report, error)
}
