package fetch

import (
	"net/http"
	"time"
)

// Config holds fetcher configuration.
type Config struct {
	// TotalBudget is the wall-clock budget shared by every call in
	// one FetchAll operation.
	TotalBudget time.Duration `yaml:"total_budget"`

	// PerCallCap, when positive, bounds any single call's timeout at
	// min(cap, remaining budget). Zero means each call may use
	// everything that is left.
	PerCallCap time.Duration `yaml:"per_call_cap"`

	UserAgent    string `yaml:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`

	// HTTPClient is the base client the budgeted transport wraps.
	HTTPClient *http.Client `yaml:"-"`
}

// Defaults applies default values to the config.
func (c *Config) Defaults() {
	if c.TotalBudget == 0 {
		c.TotalBudget = 10 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "timebudget/1.0"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
}
