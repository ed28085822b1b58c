package main

import (
	"context"

	"github.com/mxpv/pcasts/pkg/model"
)

type SubscriptionsCommand struct {
	List   listSubscriptions   `command:"list" description:"list subscriptions"`
	Add    addSubscriptions    `command:"add" description:"subscribe to feeds"`
	Remove removeSubscriptions `command:"remove" alias:"rm" description:"unsubscribe from feeds"`
	Export exportSubscriptions `command:"export" description:"export subscriptions as OPML"`
}

type feedURLs struct {
	URLs []string `positional-arg-name:"url" required:"1"`
}

type listSubscriptions struct{}

func (c *listSubscriptions) Execute(args []string) error {
	return withApp(func(ctx context.Context, app *App) error {
		return app.subscriptions.List(func(sub model.Subscription) error {
			return printSubscription(app.out, sub)
		})
	})
}

type addSubscriptions struct {
	Args feedURLs `positional-args:"yes" required:"yes"`
}

func (c *addSubscriptions) Execute(args []string) error {
	return withApp(func(ctx context.Context, app *App) error {
		added, err := app.subscriptions.Add(ctx, c.Args.URLs)
		if err != nil {
			return err
		}

		for _, sub := range added {
			if err := printSubscription(app.out, sub); err != nil {
				return err
			}
		}

		return nil
	})
}

type removeSubscriptions struct {
	Args feedURLs `positional-args:"yes" required:"yes"`
}

func (c *removeSubscriptions) Execute(args []string) error {
	return withApp(func(ctx context.Context, app *App) error {
		removed, err := app.subscriptions.Remove(c.Args.URLs)
		if err != nil {
			return err
		}

		for _, sub := range removed {
			if err := printSubscription(app.out, sub); err != nil {
				return err
			}
		}

		return nil
	})
}

type exportSubscriptions struct{}

func (c *exportSubscriptions) Execute(args []string) error {
	return withApp(func(ctx context.Context, app *App) error {
		return app.subscriptions.Export(app.out)
	})
}
