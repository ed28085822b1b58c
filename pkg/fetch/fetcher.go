// Package fetch runs batches of independent GET requests over a bounded
// worker pool and classifies the outcome of every request.
package fetch

import (
	"context"
	"time"
)

// ProgressFunc receives the number of bytes received so far and the expected
// total. total is negative when the size is unknown.
type ProgressFunc func(received, total int64)

// Fetcher performs a single blocking GET.
//
// Implementations return model.ErrNotFound (possibly wrapped) when the
// resource does not exist. Any other error is treated as a transport failure,
// unless it is a timeout.
type Fetcher interface {
	Get(ctx context.Context, url string, progress ProgressFunc) ([]byte, error)
}

// Policy controls how long a single request may take.
type Policy struct {
	// Timeout applied per request. Zero disables the timeout.
	Timeout time.Duration
}

// NoTimeout is the policy for long running downloads.
var NoTimeout = Policy{}

// WithTimeout returns a policy bounding each request to d.
func WithTimeout(d time.Duration) Policy {
	return Policy{Timeout: d}
}

func (p Policy) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, p.Timeout)
}
