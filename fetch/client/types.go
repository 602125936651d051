package client

import "context"

// Result holds the outcome of one completed GET.
type Result struct {
	URL        string
	StatusCode int
	BodyBytes  int64
}

// Client defines the interface for performing one outbound GET. Any
// HTTP status is a successful Result; errors are reserved for the
// transport itself (connection failures, deadlines).
type Client interface {
	Get(ctx context.Context, url string) (Result, error)
}
