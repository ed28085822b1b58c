package reconcile

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/pcasts/pkg/catalog"
	"github.com/mxpv/pcasts/pkg/fetch"
	"github.com/mxpv/pcasts/pkg/fs"
	"github.com/mxpv/pcasts/pkg/model"
)

// Episodes implements the update, list and download flows of the episode
// catalogs.
type Episodes struct {
	catalog *catalog.Catalog
	fetcher batchFetcher
	storage fs.Storage
	timeout time.Duration
}

func NewEpisodes(c *catalog.Catalog, fetcher batchFetcher, storage fs.Storage, timeout time.Duration) *Episodes {
	return &Episodes{catalog: c, fetcher: fetcher, storage: storage, timeout: timeout}
}

// UpdateResult describes a refreshed episode catalog.
type UpdateResult struct {
	Subscription model.Subscription
	Episodes     int
}

// Update refetches the feeds of the given subscriptions (all when ids is
// empty) and replaces their episode catalogs. A subscription whose feed
// can't be fetched or parsed keeps its previous catalog.
func (e *Episodes) Update(ctx context.Context, ids []uint64) ([]UpdateResult, error) {
	subs, err := e.catalog.Subscriptions()
	if err != nil {
		return nil, err
	}

	selected, err := lookup(subs, ids)
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		return nil, nil
	}

	urls := make([]string, 0, len(selected))
	for _, sub := range selected {
		urls = append(urls, sub.FeedURL)
	}

	log.Debugf("updating %d feed(s)", len(urls))
	outcomes := e.fetcher.Fetch(ctx, urls, fetch.WithTimeout(e.timeout))

	var results []UpdateResult
	for _, sub := range selected {
		doc, ok := parseOutcome(outcomes, sub.FeedURL)
		if !ok {
			continue
		}

		episodes := doc.Episodes(sub)
		if err := e.catalog.WriteEpisodes(sub.ID, episodes); err != nil {
			return nil, errors.Wrapf(err, "failed to save episodes of %q", sub.Title)
		}

		log.WithFields(log.Fields{
			"id":       sub.ID,
			"episodes": len(episodes),
			"skipped":  len(doc.Items) - len(episodes),
		}).Infof("updated %q", sub.Title)

		results = append(results, UpdateResult{Subscription: sub, Episodes: len(episodes)})
	}

	return results, nil
}

// List calls cb for the episodes of the given subscriptions (all when ids is
// empty). Episodes of each subscription are visited in reverse storage order.
func (e *Episodes) List(ids []uint64, cb func(episode model.Episode) error) error {
	subs, err := e.catalog.Subscriptions()
	if err != nil {
		return err
	}

	selected, err := lookup(subs, ids)
	if err != nil {
		return err
	}

	for _, sub := range selected {
		episodes, err := e.catalog.Episodes(sub.ID)
		if err != nil {
			return err
		}

		for i := len(episodes) - 1; i >= 0; i-- {
			if err := cb(episodes[i]); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Episodes) subscription(id uint64) (model.Subscription, error) {
	subs, err := e.catalog.Subscriptions()
	if err != nil {
		return model.Subscription{}, err
	}

	selected, err := lookup(subs, []uint64{id})
	if err != nil {
		return model.Subscription{}, err
	}

	return selected[0], nil
}
