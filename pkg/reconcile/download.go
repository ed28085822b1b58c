package reconcile

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/pcasts/pkg/fetch"
	"github.com/mxpv/pcasts/pkg/model"
)

// DownloadRequest selects episodes of one subscription. GUIDs take
// precedence over Count; when both are empty every episode is selected.
type DownloadRequest struct {
	SubscriptionID uint64
	GUIDs          []string
	Count          int
}

// Downloaded is an episode materialized in the download storage.
type Downloaded struct {
	Episode  model.Episode
	FileName string
	Size     int64
}

// Download fetches the selected episodes and stores them under their file
// names. Episodes already in the storage are reported without being fetched
// again, and episodes sharing a link are downloaded once. Episodes that fail
// to download are left out of the result.
func (e *Episodes) Download(ctx context.Context, req DownloadRequest) ([]Downloaded, error) {
	if _, err := e.subscription(req.SubscriptionID); err != nil {
		return nil, err
	}

	episodes, err := e.catalog.Episodes(req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	selected := dedupeLinks(selectEpisodes(episodes, req))
	if len(selected) == 0 {
		return nil, nil
	}

	var (
		existing = make(map[string]int64, len(selected))
		links    = make([]string, 0, len(selected))
	)

	for _, episode := range selected {
		name := episode.FileName()
		if size, err := e.storage.Size(ctx, name); err == nil {
			log.WithField("guid", episode.GUID).Debugf("%s already downloaded (%d bytes)", name, size)
			existing[name] = size
			continue
		}
		links = append(links, episode.Link)
	}

	var outcomes map[string]fetch.Outcome
	if len(links) > 0 {
		log.Infof("downloading %d episode(s)", len(links))
		outcomes = e.fetcher.Fetch(ctx, links, fetch.NoTimeout)
	}

	var result []Downloaded
	for _, episode := range selected {
		name := episode.FileName()
		if size, ok := existing[name]; ok {
			result = append(result, Downloaded{Episode: episode, FileName: name, Size: size})
			continue
		}

		logger := log.WithFields(log.Fields{"guid": episode.GUID, "link": episode.Link})

		outcome, ok := outcomes[episode.Link]
		if !ok || !outcome.OK() {
			logger.WithError(outcome.Err).Warnf("failed to download %q (%s)", episode.Title, outcome.Kind)
			continue
		}

		size, err := e.storage.Create(ctx, name, bytes.NewReader(outcome.Body))
		if err != nil {
			if errors.Is(err, model.ErrStorageUnavailable) {
				return nil, err
			}
			logger.WithError(err).Warnf("failed to save %s", name)
			continue
		}

		logger.Debugf("saved %s (%d bytes)", name, size)
		result = append(result, Downloaded{Episode: episode, FileName: name, Size: size})
	}

	return result, nil
}

// Downloaded returns the episodes of a subscription that are present in the
// download storage, most recent first, using the same reverse storage order
// as List. A positive count limits the result to the first count matches.
func (e *Episodes) Downloaded(ctx context.Context, id uint64, count int) ([]model.Episode, error) {
	if _, err := e.subscription(id); err != nil {
		return nil, err
	}

	names, err := e.storage.List(ctx)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(names))
	for _, name := range names {
		present[name] = struct{}{}
	}

	episodes, err := e.catalog.Episodes(id)
	if err != nil {
		return nil, err
	}

	var result []model.Episode
	for i := len(episodes) - 1; i >= 0; i-- {
		if count > 0 && len(result) >= count {
			break
		}

		if _, ok := present[episodes[i].FileName()]; ok {
			result = append(result, episodes[i])
		}
	}

	return result, nil
}

func selectEpisodes(episodes []model.Episode, req DownloadRequest) []model.Episode {
	switch {
	case len(req.GUIDs) > 0:
		wanted := make(map[string]struct{}, len(req.GUIDs))
		for _, guid := range req.GUIDs {
			wanted[guid] = struct{}{}
		}

		var selected []model.Episode
		for _, episode := range episodes {
			if _, ok := wanted[episode.GUID]; ok {
				selected = append(selected, episode)
				delete(wanted, episode.GUID)
			}
		}

		for guid := range wanted {
			log.WithField("guid", guid).Warn("episode not found")
		}

		return selected
	case req.Count > 0 && req.Count < len(episodes):
		return episodes[:req.Count]
	default:
		return episodes
	}
}

// dedupeLinks keeps the first episode of each link and drops episodes
// without one.
func dedupeLinks(episodes []model.Episode) []model.Episode {
	var (
		seen   = make(map[string]struct{}, len(episodes))
		result = make([]model.Episode, 0, len(episodes))
	)

	for _, episode := range episodes {
		if !episode.HasLink() {
			log.WithField("guid", episode.GUID).Warnf("%q has no link, skipping", episode.Title)
			continue
		}

		if _, ok := seen[episode.Link]; ok {
			continue
		}
		seen[episode.Link] = struct{}{}

		result = append(result, episode)
	}

	return result
}
