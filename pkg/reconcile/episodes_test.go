package reconcile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxpv/pcasts/pkg/model"
)

var (
	hastyTreat = model.Episode{
		GUID:              "3f1b0c6a-2d5e-4a51-9d1e-51d7b3a0b1c2",
		Title:             "Hasty Treat - CSS Grid",
		PubDate:           "Wed, 22 Jul 2020 13:00:00 +0000",
		Link:              "https://traffic.libsyn.com/secure/syntax/Syntax267.mp3",
		SubscriptionTitle: syntax.Title,
		SubscriptionID:    syntax.ID,
	}
	noLink = model.Episode{
		GUID:              "c0ffee00-0000-4000-8000-000000000001",
		Title:             "No link episode",
		PubDate:           "Mon, 20 Jul 2020 13:00:00 +0000",
		Link:              model.NoLink,
		SubscriptionTitle: syntax.Title,
		SubscriptionID:    syntax.ID,
	}
)

func TestEpisodes_Update(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)

	results, err := env.episodes().Update(testCtx, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, syntax, results[0].Subscription)
	assert.Equal(t, 3, results[0].Episodes)

	episodes, err := env.catalog.Episodes(syntax.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Episode{potluck, hastyTreat, noLink}, episodes)
}

func TestEpisodes_UpdateReplaces(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)

	stale := model.Episode{
		GUID:              "stale",
		Title:             "Removed from feed",
		PubDate:           "Mon, 01 Jun 2020 13:00:00 +0000",
		Link:              "https://example.com/stale.mp3",
		SubscriptionTitle: syntax.Title,
		SubscriptionID:    syntax.ID,
	}
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{stale, potluck}))

	_, err := env.episodes().Update(testCtx, []uint64{syntax.ID})
	require.NoError(t, err)

	episodes, err := env.catalog.Episodes(syntax.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Episode{potluck, hastyTreat, noLink}, episodes)
}

func TestEpisodes_UpdateKeepsCatalogOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, http203, syntax)
	env.fixtures.Fail(http203URL, errors.New("connection refused"))

	previous := []model.Episode{{
		GUID:              "http203-1",
		Title:             "Previous episode",
		PubDate:           "Tue, 02 Jun 2020 08:00:00 +0000",
		Link:              "https://example.com/203.mp3",
		SubscriptionTitle: http203.Title,
		SubscriptionID:    http203.ID,
	}}
	require.NoError(t, env.catalog.WriteEpisodes(http203.ID, previous))

	results, err := env.episodes().Update(testCtx, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, syntax.ID, results[0].Subscription.ID)

	episodes, err := env.catalog.Episodes(http203.ID)
	require.NoError(t, err)
	assert.Equal(t, previous, episodes)
}

func TestEpisodes_UpdateUnknownID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	env := newTestEnv(t)
	env.seed(t, syntax)

	fetcher := NewMockbatchFetcher(ctrl)
	episodes := NewEpisodes(env.catalog, fetcher, env.storage, testTimeout)

	_, err := episodes.Update(testCtx, []uint64{syntax.ID, 42})
	assert.True(t, errors.Is(err, model.ErrRecordNotFound))
}

func TestEpisodes_UpdateNoSubscriptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	env := newTestEnv(t)
	fetcher := NewMockbatchFetcher(ctrl)

	results, err := NewEpisodes(env.catalog, fetcher, env.storage, testTimeout).Update(testCtx, nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestEpisodes_ListReverse(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck, hastyTreat, noLink}))

	var guids []string
	err := env.episodes().List(nil, func(episode model.Episode) error {
		guids = append(guids, episode.GUID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{noLink.GUID, hastyTreat.GUID, potluck.GUID}, guids)
}

func TestEpisodes_ListWithoutCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)

	calls := 0
	err := env.episodes().List([]uint64{syntax.ID}, func(episode model.Episode) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Zero(t, calls)
}

func TestEpisodes_Download(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck}))

	downloaded, err := env.episodes().Download(testCtx, DownloadRequest{
		SubscriptionID: syntax.ID,
		GUIDs:          []string{potluck.GUID},
	})
	require.NoError(t, err)
	require.Len(t, downloaded, 1)

	name := "Syntax - Tasty Web Development Treats_Potluck....mp3"
	assert.Equal(t, name, downloaded[0].FileName)
	assert.EqualValues(t, len("Syntax episode"), downloaded[0].Size)

	data, err := os.ReadFile(filepath.Join(env.dir, "episodes", name))
	require.NoError(t, err)
	assert.Equal(t, "Syntax episode", string(data))
}

func TestEpisodes_DownloadSkipsFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck, hastyTreat, noLink}))

	downloaded, err := env.episodes().Download(testCtx, DownloadRequest{SubscriptionID: syntax.ID})
	require.NoError(t, err)
	require.Len(t, downloaded, 1)
	assert.Equal(t, potluck, downloaded[0].Episode)

	// 404 on the second episode.
	assert.Equal(t, 1, env.fixtures.Requests(hastyTreat.Link))
	assert.Equal(t, 0, env.fixtures.Requests(model.NoLink))
}

func TestEpisodes_DownloadDedupesLinks(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)

	rerun := potluck
	rerun.GUID = "rerun"
	rerun.Title = "Potluck (rerun)"
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck, rerun}))

	downloaded, err := env.episodes().Download(testCtx, DownloadRequest{SubscriptionID: syntax.ID})
	require.NoError(t, err)
	require.Len(t, downloaded, 1)
	assert.Equal(t, potluck.GUID, downloaded[0].Episode.GUID)
	assert.Equal(t, 1, env.fixtures.Requests(potluckLink))
}

func TestEpisodes_DownloadCount(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck, hastyTreat}))

	downloaded, err := env.episodes().Download(testCtx, DownloadRequest{SubscriptionID: syntax.ID, Count: 1})
	require.NoError(t, err)
	require.Len(t, downloaded, 1)
	assert.Equal(t, 0, env.fixtures.Requests(hastyTreat.Link))
}

func TestEpisodes_DownloadSkipsExisting(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck, hastyTreat}))

	_, err := env.storage.Create(testCtx, potluck.FileName(), strings.NewReader("already here"))
	require.NoError(t, err)

	downloaded, err := env.episodes().Download(testCtx, DownloadRequest{SubscriptionID: syntax.ID})
	require.NoError(t, err)

	// hastyTreat 404s, potluck is reported from storage.
	require.Len(t, downloaded, 1)
	assert.Equal(t, potluck, downloaded[0].Episode)
	assert.EqualValues(t, len("already here"), downloaded[0].Size)

	assert.Equal(t, 0, env.fixtures.Requests(potluckLink))
	assert.Equal(t, 1, env.fixtures.Requests(hastyTreat.Link))

	data, err := os.ReadFile(filepath.Join(env.dir, "episodes", potluck.FileName()))
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data))
}

func TestEpisodes_DownloadAllExistingNoFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	env := newTestEnv(t)
	env.seed(t, syntax)
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck}))

	_, err := env.storage.Create(testCtx, potluck.FileName(), strings.NewReader("Syntax episode"))
	require.NoError(t, err)

	// No Fetch expectation: everything is already in storage.
	fetcher := NewMockbatchFetcher(ctrl)
	downloaded, err := NewEpisodes(env.catalog, fetcher, env.storage, testTimeout).Download(testCtx, DownloadRequest{SubscriptionID: syntax.ID})
	require.NoError(t, err)
	require.Len(t, downloaded, 1)
	assert.Equal(t, potluck.FileName(), downloaded[0].FileName)
}

func TestEpisodes_DownloadUnknownSubscription(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)

	_, err := env.episodes().Download(testCtx, DownloadRequest{SubscriptionID: 42})
	assert.True(t, errors.Is(err, model.ErrRecordNotFound))
}

func TestEpisodes_Downloaded(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck, hastyTreat, noLink}))

	for _, episode := range []model.Episode{potluck, hastyTreat} {
		_, err := env.storage.Create(testCtx, episode.FileName(), strings.NewReader("data"))
		require.NoError(t, err)
	}

	episodes := env.episodes()

	all, err := episodes.Downloaded(testCtx, syntax.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.Episode{hastyTreat, potluck}, all)

	// Most recent first, like List.
	first, err := episodes.Downloaded(testCtx, syntax.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.Episode{hastyTreat}, first)
}

func TestEpisodes_DownloadedEmptyStorage(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, syntax)
	require.NoError(t, env.catalog.WriteEpisodes(syntax.ID, []model.Episode{potluck}))

	episodes, err := env.episodes().Downloaded(testCtx, syntax.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, episodes)
}
