package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
	"github.com/mxpv/pcasts/pkg/reconcile"
)

type EpisodesCommand struct {
	List     listEpisodes     `command:"list" description:"list stored episodes, most recent first"`
	Update   updateEpisodes   `command:"update" description:"refresh episode catalogs from feeds"`
	Download downloadEpisodes `command:"download" description:"download episodes of a subscription"`
}

type listEpisodes struct {
	IDs []uint64 `long:"id" description:"subscription id (repeatable, default: all)"`
}

func (c *listEpisodes) Execute(args []string) error {
	return withApp(func(ctx context.Context, app *App) error {
		return app.episodes.List(c.IDs, func(episode model.Episode) error {
			return printEpisode(app.out, episode)
		})
	})
}

type updateEpisodes struct {
	IDs []uint64 `long:"id" description:"subscription id (repeatable, default: all)"`
}

func (c *updateEpisodes) Execute(args []string) error {
	return withApp(func(ctx context.Context, app *App) error {
		results, err := app.episodes.Update(ctx, c.IDs)
		if err != nil {
			return err
		}

		for _, result := range results {
			if err := printUpdate(app.out, result); err != nil {
				return err
			}
		}

		return nil
	})
}

type downloadEpisodes struct {
	ID         uint64   `long:"id" required:"yes" description:"subscription id"`
	EpisodeIDs []string `long:"episode-id" description:"episode guid (repeatable)"`
	Count      int      `long:"count" short:"n" description:"number of episodes to take, in catalog order"`
	List       bool     `long:"list" description:"list already downloaded episodes instead of downloading"`
}

func (c *downloadEpisodes) Execute(args []string) error {
	if c.Count < 0 {
		return errors.Errorf("count can't be negative (got %d)", c.Count)
	}

	if c.List && len(c.EpisodeIDs) > 0 {
		return errors.New("--list can't be combined with --episode-id")
	}

	return withApp(func(ctx context.Context, app *App) error {
		if c.List {
			episodes, err := app.episodes.Downloaded(ctx, c.ID, c.Count)
			if err != nil {
				return err
			}

			for _, episode := range episodes {
				if err := printEpisode(app.out, episode); err != nil {
					return err
				}
			}

			return nil
		}

		downloaded, err := app.episodes.Download(ctx, reconcile.DownloadRequest{
			SubscriptionID: c.ID,
			GUIDs:          c.EpisodeIDs,
			Count:          c.Count,
		})
		if err != nil {
			return err
		}

		for _, item := range downloaded {
			if err := printDownloaded(app.out, item); err != nil {
				return err
			}
		}

		return nil
	})
}
