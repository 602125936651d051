package models

import (
	"strings"
	"time"
)

// CallOutcome classifies how a budgeted call ended.
type CallOutcome string

const (
	// OutcomeOK: the call completed and returned a response.
	OutcomeOK CallOutcome = "ok"
	// OutcomeTransportError: the underlying transport failed,
	// including its own deadline firing mid-call.
	OutcomeTransportError CallOutcome = "transport_error"
	// OutcomeBudgetExhausted: the call was refused before any network
	// activity because the shared budget had run out.
	OutcomeBudgetExhausted CallOutcome = "budget_exhausted"
)

// CallResult records one outbound call made under a budget scope.
type CallResult struct {
	ScopeID         string        `json:"scope_id" yaml:"scope_id"`
	Seq             int           `json:"seq" yaml:"seq"`
	URL             string        `json:"url" yaml:"url"`
	Outcome         CallOutcome   `json:"outcome" yaml:"outcome"`
	StatusCode      int           `json:"status_code" yaml:"status_code"`
	AssignedTimeout time.Duration `json:"assigned_timeout" yaml:"assigned_timeout"`
	Elapsed         time.Duration `json:"elapsed" yaml:"elapsed"`
	Err             string        `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt       time.Time     `json:"started_at" yaml:"started_at"`
}

// Realized reports whether the call actually reached the transport.
func (r CallResult) Realized() bool {
	return r.Outcome != OutcomeBudgetExhausted
}

// Report summarizes one budgeted multi-call operation.
type Report struct {
	ScopeID     string        `json:"scope_id" yaml:"scope_id"`
	TotalBudget time.Duration `json:"total_budget" yaml:"total_budget"`
	Spent       time.Duration `json:"spent" yaml:"spent"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	Calls       []CallResult  `json:"calls" yaml:"calls"`
}

// Completed returns how many calls finished with a response.
func (r Report) Completed() int {
	n := 0
	for _, c := range r.Calls {
		if c.Outcome == OutcomeOK {
			n++
		}
	}
	return n
}

// Refused returns how many calls were rejected on an exhausted budget.
func (r Report) Refused() int {
	n := 0
	for _, c := range r.Calls {
		if c.Outcome == OutcomeBudgetExhausted {
			n++
		}
	}
	return n
}

// Exhausted reports whether the operation ran out of budget before
// finishing its call list.
func (r Report) Exhausted() bool { return r.Refused() > 0 }

// NormalizeURL trims whitespace and defaults bare host[/path] targets
// to https.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u
}
