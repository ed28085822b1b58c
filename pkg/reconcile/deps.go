//go:generate mockgen -source=deps.go -destination=deps_mock_test.go -package=reconcile

package reconcile

import (
	"context"

	"github.com/mxpv/pcasts/pkg/fetch"
)

type batchFetcher interface {
	Fetch(ctx context.Context, urls []string, policy fetch.Policy) map[string]fetch.Outcome
}
