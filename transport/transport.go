// Package transport intercepts outbound HTTP calls and assigns each
// one the remaining time of an active budget scope as its timeout.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tnicklin/timebudget/budget"
	"github.com/tnicklin/timebudget/logger"
)

var _ http.RoundTripper = (*Transport)(nil)

// Transport is an http.RoundTripper that budgets every request it
// carries. The active scope is either fixed at construction or taken
// from the request context (budget.NewContext); requests with neither
// pass through to the base transport untouched.
//
// Timeout policy: the assigned deadline is the scope's remaining time.
// If the request context already carries an earlier deadline — the
// caller's own requested timeout — the earlier one wins, so the
// effective timeout is min(remaining, requested). The scope never
// extends a timeout the caller chose.
type Transport struct {
	base   http.RoundTripper
	scope  *budget.Scope
	logger logger.Logger
}

// Params holds configuration for creating a Transport.
type Params struct {
	// Base is the round tripper that actually carries requests.
	// Defaults to http.DefaultTransport.
	Base http.RoundTripper

	// Scope, if set, budgets every request through this transport.
	// Leave nil to resolve the scope from each request's context.
	Scope *budget.Scope

	// Logger, if set, emits a debug line per intercepted call.
	Logger logger.Logger
}

// New creates a Transport from the given params.
func New(p Params) *Transport {
	base := p.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:   base,
		scope:  p.Scope,
		logger: p.Logger,
	}
}

// NewClient returns an http.Client whose every request is budgeted by
// the given scope. The client's own Timeout is left at zero; per-call
// deadlines come from the scope.
func NewClient(scope *budget.Scope, base *http.Client) *http.Client {
	var inner http.RoundTripper
	out := &http.Client{}
	if base != nil {
		copied := *base
		out = &copied
		inner = base.Transport
	}
	out.Timeout = 0
	out.Transport = New(Params{Base: inner, Scope: scope})
	return out
}

// RoundTrip applies the budget and forwards the request. A request
// attempted with zero remaining budget fails with an error matching
// budget.ErrExpired before the base transport is invoked. Every other
// outcome of the underlying call, including its own timeout firing
// mid-flight, is propagated unchanged.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	scope := t.scope
	if scope == nil {
		scope, _ = budget.FromContext(req.Context())
	}
	if scope == nil {
		return t.base.RoundTrip(req)
	}

	remaining := scope.Remaining()
	if remaining == 0 {
		// RoundTrip must always close the body, including on errors.
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, &ExhaustedError{Scope: scope.ID(), URL: req.URL.String()}
	}

	ctx, cancel := scope.Context(req.Context())

	if t.logger != nil {
		t.logger.DebugW("budgeted call",
			"scope", scope.ID(),
			"url", req.URL.String(),
			"assigned_timeout", remaining,
		)
	}

	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}

	// The deadline must survive until the body is drained; cancelling
	// here would kill streaming reads.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// ExhaustedError reports a call that was refused because the scope's
// budget had already run out. It matches budget.ErrExpired under
// errors.Is.
type ExhaustedError struct {
	Scope string
	URL   string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("transport: budget exhausted before calling %s (scope %s)", e.URL, e.Scope)
}

func (e *ExhaustedError) Unwrap() error { return budget.ErrExpired }

// Timeout reports true so the error satisfies net.Error-style timeout
// checks alongside real deadline failures.
func (e *ExhaustedError) Timeout() bool { return true }

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// Assigned returns the timeout a call made right now would receive:
// the scope's remaining time, capped by the requested timeout when one
// is given (requested <= 0 means none). Exposed for call sites that
// pass explicit timeouts to non-HTTP collaborators.
func Assigned(scope *budget.Scope, requested time.Duration) time.Duration {
	remaining := scope.Remaining()
	if requested > 0 && requested < remaining {
		return requested
	}
	return remaining
}
