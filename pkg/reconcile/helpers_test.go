package reconcile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mxpv/pcasts/pkg/catalog"
	"github.com/mxpv/pcasts/pkg/fetch"
	"github.com/mxpv/pcasts/pkg/fs"
	"github.com/mxpv/pcasts/pkg/model"
)

const (
	http203URL  = "http://feeds.feedburner.com/Http203Podcast"
	syntaxURL   = "https://feed.syntax.fm/rss"
	potluckLink = "https://traffic.libsyn.com/secure/syntax/Syntax268.mp3"
	testTimeout = 2 * time.Second
)

var (
	testCtx = context.Background()

	http203 = model.Subscription{
		ID:      12772734294147401495,
		SiteURL: "https://developers.google.com/web/shows/http203/podcast/",
		FeedURL: http203URL,
		Title:   "HTTP 203",
	}
	syntax = model.Subscription{
		ID:      15913066141282366353,
		SiteURL: "https://syntax.fm",
		FeedURL: syntaxURL,
		Title:   "Syntax - Tasty Web Development Treats",
	}
	potluck = model.Episode{
		GUID:              "272eca72-476b-4633-864c-a9fffa3f5976",
		Title:             "Potluck...",
		PubDate:           "Mon, 27 Jul 2020 13:00:00 +0000",
		Link:              potluckLink,
		SubscriptionTitle: syntax.Title,
		SubscriptionID:    syntax.ID,
	}
)

type testEnv struct {
	dir      string
	catalog  *catalog.Catalog
	fixtures *fetch.Fixtures
	fetcher  *fetch.Orchestrator
	storage  *fs.Local
}

func newTestEnv(t *testing.T) *testEnv {
	dir := t.TempDir()

	fixtures, err := fetch.LoadFixtures(map[string]string{
		http203URL: "../feed/testdata/rss_203.xml",
		syntaxURL:  "../feed/testdata/syntax.xml",
	})
	require.NoError(t, err)
	fixtures.Set(potluckLink, []byte("Syntax episode"))

	storage, err := fs.NewLocal(filepath.Join(dir, "episodes"))
	require.NoError(t, err)

	return &testEnv{
		dir:      dir,
		catalog:  catalog.New(filepath.Join(dir, "app")),
		fixtures: fixtures,
		fetcher:  fetch.New(fixtures, 4),
		storage:  storage,
	}
}

func (e *testEnv) subscriptions() *Subscriptions {
	return NewSubscriptions(e.catalog, e.fetcher, testTimeout)
}

func (e *testEnv) episodes() *Episodes {
	return NewEpisodes(e.catalog, e.fetcher, e.storage, testTimeout)
}

func (e *testEnv) seed(t *testing.T, subs ...model.Subscription) {
	require.NoError(t, e.catalog.AppendSubscriptions(subs))
}
