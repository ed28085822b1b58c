package fetch

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mxpv/pcasts/pkg/model"
)

// Option customizes an Orchestrator.
type Option func(o *Orchestrator)

// WithMonitor attaches m to every batch started by the orchestrator.
func WithMonitor(m Monitor) Option {
	return func(o *Orchestrator) {
		o.monitor = m
	}
}

// Orchestrator dispatches batches of requests to a Fetcher using at most
// workers concurrent requests.
type Orchestrator struct {
	fetcher Fetcher
	workers int
	monitor Monitor
}

func New(fetcher Fetcher, workers int, opts ...Option) *Orchestrator {
	if workers <= 0 {
		workers = model.DefaultWorkers
	}

	o := &Orchestrator{fetcher: fetcher, workers: workers}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Batch is a set of in-flight requests started by Orchestrator.Start.
type Batch struct {
	slots    []*slot
	outcomes []Outcome
	done     chan struct{}
}

// Start dispatches one request per distinct URL and returns immediately.
// A failing request never cancels the others.
func (o *Orchestrator) Start(ctx context.Context, urls []string, policy Policy) *Batch {
	urls = distinct(urls)

	batch := &Batch{
		slots:    make([]*slot, len(urls)),
		outcomes: make([]Outcome, len(urls)),
		done:     make(chan struct{}),
	}

	for i, url := range urls {
		batch.slots[i] = newSlot(url)
	}

	group := errgroup.Group{}
	group.SetLimit(o.workers)

	go func() {
		defer close(batch.done)

		for i := range urls {
			i := i
			group.Go(func() error {
				batch.outcomes[i] = o.fetch(ctx, batch.slots[i], policy)
				return nil
			})
		}

		_ = group.Wait()
	}()

	return batch
}

// Fetch runs a batch to completion. The result holds exactly one outcome per
// distinct URL.
func (o *Orchestrator) Fetch(ctx context.Context, urls []string, policy Policy) map[string]Outcome {
	batch := o.Start(ctx, urls, policy)

	if o.monitor != nil {
		stop := o.monitor.Track(batch)
		defer stop()
	}

	return batch.Wait()
}

func (o *Orchestrator) fetch(ctx context.Context, s *slot, policy Policy) Outcome {
	logger := log.WithField("url", s.url)

	reqCtx, cancel := policy.context(ctx)
	defer cancel()

	logger.Debug("fetching")
	body, err := o.fetcher.Get(reqCtx, s.url, s.update)

	outcome := newOutcome(s.url, body, err)
	s.finish(outcome)

	if outcome.OK() {
		logger.Debugf("received %d bytes", len(body))
	} else {
		logger.WithError(outcome.Err).Debugf("fetch failed: %s", outcome.Kind)
	}

	return outcome
}

// Wait blocks until every request of the batch has completed.
func (b *Batch) Wait() map[string]Outcome {
	<-b.done

	result := make(map[string]Outcome, len(b.outcomes))
	for _, outcome := range b.outcomes {
		result[outcome.URL] = outcome
	}

	return result
}

// Done is closed once every request has completed.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Progress returns a snapshot of every request in dispatch order.
// It is safe to call concurrently with running requests.
func (b *Batch) Progress() []Status {
	statuses := make([]Status, len(b.slots))
	for i, s := range b.slots {
		statuses[i] = s.status()
	}

	return statuses
}

func distinct(urls []string) []string {
	var (
		seen   = make(map[string]struct{}, len(urls))
		result = make([]string, 0, len(urls))
	)

	for _, url := range urls {
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		result = append(result, url)
	}

	return result
}
