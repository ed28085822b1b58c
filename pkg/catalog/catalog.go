// Package catalog stores subscriptions and episodes as CSV files under the
// application directory.
package catalog

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/pcasts/pkg/model"
)

// SubscriptionsFile is the name of the subscription catalog.
const SubscriptionsFile = "podcast_list.csv"

// Catalog gives access to the subscription catalog and to one episode
// catalog per subscription, named by the subscription ID.
//
// Catalog does no locking: concurrent writers to the same directory must be
// serialized by the caller.
type Catalog struct {
	dir string
}

func New(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// SubscriptionsPath returns the path of the subscription catalog.
func (c *Catalog) SubscriptionsPath() string {
	return filepath.Join(c.dir, SubscriptionsFile)
}

// EpisodesPath returns the path of the episode catalog of subscription id.
func (c *Catalog) EpisodesPath(id uint64) string {
	return filepath.Join(c.dir, episodesFile(id))
}

func episodesFile(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// WalkSubscriptions calls cb for every subscription in storage order.
// Malformed rows are skipped.
func (c *Catalog) WalkSubscriptions(cb func(sub model.Subscription) error) error {
	file, err := Open(c.dir, SubscriptionsFile, Read)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := newRowReader(file, subscriptionHeader)
	for {
		record, err := reader.next()
		if err == io.EOF {
			return nil
		}

		var sub model.Subscription
		if err == nil {
			sub, err = decodeSubscription(record)
		}

		if err != nil {
			if errors.Is(err, model.ErrSerialization) {
				log.WithError(err).Warnf("skipping malformed row in %s", SubscriptionsFile)
				continue
			}
			return err
		}

		if err := cb(sub); err != nil {
			return err
		}
	}
}

// Subscriptions loads the whole subscription catalog.
func (c *Catalog) Subscriptions() ([]model.Subscription, error) {
	var subs []model.Subscription
	err := c.WalkSubscriptions(func(sub model.Subscription) error {
		subs = append(subs, sub)
		return nil
	})
	return subs, err
}

// AppendSubscriptions adds subs to the end of the catalog. The header is
// written only when the catalog is empty.
func (c *Catalog) AppendSubscriptions(subs []model.Subscription) error {
	if len(subs) == 0 {
		return nil
	}

	file, err := Open(c.dir, SubscriptionsFile, Append)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return errors.Wrapf(model.ErrStorageUnavailable, "failed to stat catalog: %v", err)
	}

	var header []string
	if stat.Size() == 0 {
		header = subscriptionHeader
	}

	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, encodeSubscription(sub))
	}

	if err := writeRows(file, header, rows); err != nil {
		return err
	}

	return file.Close()
}

// WriteSubscriptions replaces the catalog content with subs.
func (c *Catalog) WriteSubscriptions(subs []model.Subscription) error {
	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, encodeSubscription(sub))
	}

	return replace(c.dir, SubscriptionsFile, func(f *os.File) error {
		return writeRows(f, subscriptionHeader, rows)
	})
}

// WalkEpisodes calls cb for every episode of subscription id in storage
// order. A subscription without an episode catalog has no episodes.
func (c *Catalog) WalkEpisodes(id uint64, cb func(episode model.Episode) error) error {
	name := episodesFile(id)

	file, err := os.Open(filepath.Join(c.dir, name))
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrapf(model.ErrStorageUnavailable, "failed to open %s: %v", name, err)
	}
	defer file.Close()

	reader := newRowReader(file, episodeHeader)
	for {
		record, err := reader.next()
		if err == io.EOF {
			return nil
		}

		var episode model.Episode
		if err == nil {
			episode, err = decodeEpisode(record, id)
		}

		if err != nil {
			if errors.Is(err, model.ErrSerialization) {
				log.WithError(err).Warnf("skipping malformed row in episode catalog %s", name)
				continue
			}
			return err
		}

		if err := cb(episode); err != nil {
			return err
		}
	}
}

// Episodes loads the episode catalog of subscription id.
func (c *Catalog) Episodes(id uint64) ([]model.Episode, error) {
	var episodes []model.Episode
	err := c.WalkEpisodes(id, func(episode model.Episode) error {
		episodes = append(episodes, episode)
		return nil
	})
	return episodes, err
}

// WriteEpisodes replaces the episode catalog of subscription id.
func (c *Catalog) WriteEpisodes(id uint64, episodes []model.Episode) error {
	rows := make([][]string, 0, len(episodes))
	for _, episode := range episodes {
		rows = append(rows, encodeEpisode(episode))
	}

	return replace(c.dir, episodesFile(id), func(f *os.File) error {
		return writeRows(f, episodeHeader, rows)
	})
}
