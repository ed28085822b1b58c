package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
	"github.com/mxpv/pcasts/pkg/reconcile"
)

func printSubscription(w io.Writer, sub model.Subscription) error {
	return printf(w, "%d\t%s\t%s\n", sub.ID, sub.Title, sub.FeedURL)
}

func printEpisode(w io.Writer, episode model.Episode) error {
	return printf(w, "%s\t%s\t%s: %s\n", episode.GUID, episode.PubDate, episode.SubscriptionTitle, episode.Title)
}

func printUpdate(w io.Writer, result reconcile.UpdateResult) error {
	return printf(w, "%d\t%s\t%d episode(s)\n", result.Subscription.ID, result.Subscription.Title, result.Episodes)
}

func printDownloaded(w io.Writer, item reconcile.Downloaded) error {
	return printf(w, "%s\t%s\n", item.FileName, formatBytes(item.Size))
}

func printf(w io.Writer, format string, args ...interface{}) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return errors.Wrap(err, "failed to write output")
	}
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
