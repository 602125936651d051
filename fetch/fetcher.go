// Package fetch runs sequences of outbound GETs under one shared time
// budget and records what each call was assigned and how it ended.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tnicklin/timebudget/budget"
	"github.com/tnicklin/timebudget/clock"
	"github.com/tnicklin/timebudget/fetch/client"
	"github.com/tnicklin/timebudget/logger"
	"github.com/tnicklin/timebudget/models"
	"github.com/tnicklin/timebudget/store"
	"github.com/tnicklin/timebudget/transport"
)

var _ Fetcher = (*DefaultFetcher)(nil)

// DefaultFetcher is the standard Fetcher implementation.
type DefaultFetcher struct {
	cfg    Config
	store  store.Store
	logger logger.Logger
	clk    clock.Clock
	wall   clock.Clock
	client client.Client
}

// Params holds configuration for creating a DefaultFetcher.
type Params struct {
	Config Config

	// Store, if set, receives the report of every finished run.
	Store store.Store

	Logger logger.Logger

	// Clock feeds the budget scope. Defaults to clock.System().
	Clock clock.Clock

	// WallClock stamps recorded results for display; an NTP-corrected
	// clock fits here. Defaults to Clock.
	WallClock clock.Clock

	// Client overrides the budgeted HTTP client, for tests. When set,
	// the fetcher still refuses calls on an exhausted scope before
	// invoking it.
	Client client.Client
}

// New creates a new DefaultFetcher with the given parameters.
func New(p Params) *DefaultFetcher {
	p.Config.Defaults()

	clk := p.Clock
	if clk == nil {
		clk = clock.System()
	}
	wall := p.WallClock
	if wall == nil {
		wall = clk
	}

	return &DefaultFetcher{
		cfg:    p.Config,
		store:  p.Store,
		logger: p.Logger,
		clk:    clk,
		wall:   wall,
		client: p.Client,
	}
}

func (f *DefaultFetcher) log() logger.Logger {
	if f.logger == nil {
		return logger.NewNop()
	}
	return f.logger
}

// FetchAll opens one budget scope and walks the url list sequentially.
// Calls already completed when the budget runs out keep their results;
// every remaining url is recorded as refused without any network
// activity.
func (f *DefaultFetcher) FetchAll(ctx context.Context, total time.Duration, urls []string) (models.Report, error) {
	scope, err := budget.Open(total, budget.WithClock(f.clk))
	if err != nil {
		return models.Report{}, fmt.Errorf("fetch: open scope: %w", err)
	}

	httpClient := f.client
	if httpClient == nil {
		httpClient = client.New(client.Params{
			UserAgent:    f.cfg.UserAgent,
			MaxBodyBytes: f.cfg.MaxBodyBytes,
			HTTPClient:   transport.NewClient(scope, f.cfg.HTTPClient),
		})
	}

	report := models.Report{
		ScopeID:     scope.ID(),
		TotalBudget: scope.Total(),
		StartedAt:   f.wall.Now(),
	}

	f.log().InfoW("budgeted fetch starting",
		"scope", scope.ID(),
		"budget", scope.Total(),
		"urls", len(urls),
	)

	for i, raw := range urls {
		u := models.NormalizeURL(raw)
		result := models.CallResult{
			ScopeID:   scope.ID(),
			Seq:       i,
			URL:       u,
			StartedAt: f.wall.Now(),
		}

		assigned := transport.Assigned(scope, f.cfg.PerCallCap)
		if assigned == 0 {
			result.Outcome = models.OutcomeBudgetExhausted
			report.Calls = append(report.Calls, result)
			continue
		}
		result.AssignedTimeout = assigned

		callCtx, cancel := context.WithTimeout(ctx, assigned)
		callStart := f.clk.Now()
		res, err := httpClient.Get(callCtx, u)
		result.Elapsed = f.clk.Now().Sub(callStart)
		cancel()

		switch {
		case err == nil:
			result.Outcome = models.OutcomeOK
			result.StatusCode = res.StatusCode
		case errors.Is(err, budget.ErrExpired):
			result.Outcome = models.OutcomeBudgetExhausted
			result.Err = err.Error()
		default:
			result.Outcome = models.OutcomeTransportError
			result.Err = err.Error()
		}

		f.log().DebugW("budgeted call finished",
			"scope", scope.ID(),
			"seq", i,
			"url", u,
			"outcome", result.Outcome,
			"assigned_timeout", result.AssignedTimeout,
			"elapsed", result.Elapsed,
		)

		report.Calls = append(report.Calls, result)
	}

	report.Spent = scope.Elapsed()

	if f.store != nil {
		if err := f.store.SaveReport(ctx, report); err != nil {
			f.log().WarnW("saving fetch report failed", "scope", scope.ID(), "error", err)
		}
	}

	f.log().InfoW("budgeted fetch finished",
		"scope", scope.ID(),
		"completed", report.Completed(),
		"refused", report.Refused(),
		"spent", report.Spent,
	)

	if report.Exhausted() {
		return report, fmt.Errorf("fetch: %d of %d calls refused: %w",
			report.Refused(), len(report.Calls), budget.ErrExpired)
	}
	return report, nil
}
