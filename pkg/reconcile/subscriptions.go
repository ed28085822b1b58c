// Package reconcile merges freshly fetched feeds and media into the catalogs
// and the download storage.
package reconcile

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/pcasts/pkg/catalog"
	"github.com/mxpv/pcasts/pkg/feed"
	"github.com/mxpv/pcasts/pkg/fetch"
	"github.com/mxpv/pcasts/pkg/ident"
	"github.com/mxpv/pcasts/pkg/model"
)

// Subscriptions implements the add, remove and list flows of the
// subscription catalog.
type Subscriptions struct {
	catalog *catalog.Catalog
	fetcher batchFetcher
	timeout time.Duration
}

func NewSubscriptions(c *catalog.Catalog, fetcher batchFetcher, timeout time.Duration) *Subscriptions {
	return &Subscriptions{catalog: c, fetcher: fetcher, timeout: timeout}
}

// Add subscribes to the feeds at urls. URLs already in the catalog are
// skipped without being fetched. Feeds that fail to download or parse are
// dropped. Returns the subscriptions appended to the catalog.
func (s *Subscriptions) Add(ctx context.Context, urls []string) ([]model.Subscription, error) {
	existing, err := s.catalog.Subscriptions()
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(existing)+len(urls))
	for _, sub := range existing {
		known[sub.FeedURL] = struct{}{}
	}

	var pending []string
	for _, url := range urls {
		if _, ok := known[url]; ok {
			log.Debugf("already subscribed to %s", url)
			continue
		}
		known[url] = struct{}{}
		pending = append(pending, url)
	}

	if len(pending) == 0 {
		return nil, nil
	}

	log.Debugf("fetching %d new feed(s)", len(pending))
	outcomes := s.fetcher.Fetch(ctx, pending, fetch.WithTimeout(s.timeout))

	var added []model.Subscription
	for _, url := range pending {
		doc, ok := parseOutcome(outcomes, url)
		if !ok {
			continue
		}

		sub := doc.Subscription(ident.Assign(url), url)
		log.WithFields(log.Fields{"id": sub.ID, "url": url}).Infof("subscribed to %q", sub.Title)
		added = append(added, sub)
	}

	if err := s.catalog.AppendSubscriptions(added); err != nil {
		return nil, err
	}

	return added, nil
}

// Remove deletes every subscription whose feed URL is in urls and rewrites
// the catalog. Unknown URLs are ignored. Returns the removed subscriptions.
func (s *Subscriptions) Remove(urls []string) ([]model.Subscription, error) {
	existing, err := s.catalog.Subscriptions()
	if err != nil {
		return nil, err
	}

	remove := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		remove[url] = struct{}{}
	}

	var (
		retained = make([]model.Subscription, 0, len(existing))
		removed  []model.Subscription
	)

	for _, sub := range existing {
		if _, ok := remove[sub.FeedURL]; ok {
			removed = append(removed, sub)
			continue
		}
		retained = append(retained, sub)
	}

	if err := s.catalog.WriteSubscriptions(retained); err != nil {
		return nil, err
	}

	for _, sub := range removed {
		log.WithField("id", sub.ID).Infof("unsubscribed from %q", sub.Title)
	}

	return removed, nil
}

// List calls cb for every subscription in storage order.
func (s *Subscriptions) List(cb func(sub model.Subscription) error) error {
	return s.catalog.WalkSubscriptions(cb)
}

// Export writes the subscription catalog to w as OPML.
func (s *Subscriptions) Export(w io.Writer) error {
	subs, err := s.catalog.Subscriptions()
	if err != nil {
		return err
	}

	out, err := feed.BuildOPML(subs)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return errors.Wrap(err, "failed to write opml")
	}

	return nil
}

// parseOutcome returns the parsed feed fetched from url. Failures are logged
// and reported as !ok.
func parseOutcome(outcomes map[string]fetch.Outcome, url string) (*feed.Document, bool) {
	logger := log.WithField("url", url)

	outcome, ok := outcomes[url]
	if !ok {
		logger.Warn("no fetch outcome, skipping")
		return nil, false
	}

	if !outcome.OK() {
		logger.WithError(outcome.Err).Warnf("failed to fetch feed (%s), skipping", outcome.Kind)
		return nil, false
	}

	doc, err := feed.Parse(outcome.Body)
	if err != nil {
		logger.WithError(err).Warn("failed to parse feed, skipping")
		return nil, false
	}

	return doc, true
}

// lookup returns the subscriptions with the given ids in the requested order, or
// every subscription when ids is empty.
func lookup(subs []model.Subscription, ids []uint64) ([]model.Subscription, error) {
	if len(ids) == 0 {
		return subs, nil
	}

	byID := make(map[uint64]model.Subscription, len(subs))
	for _, sub := range subs {
		byID[sub.ID] = sub
	}

	var (
		seen     = make(map[uint64]struct{}, len(ids))
		selected = make([]model.Subscription, 0, len(ids))
	)

	for _, id := range ids {
		sub, ok := byID[id]
		if !ok {
			return nil, errors.Wrapf(model.ErrRecordNotFound, "subscription %d", id)
		}

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		selected = append(selected, sub)
	}

	return selected, nil
}
