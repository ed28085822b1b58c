package feed

import (
	"bytes"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
)

// Document is the part of a feed that gets persisted.
type Document struct {
	Title string
	Link  string
	Items []Item
}

// Item is a single feed entry. Link prefers the media enclosure.
type Item struct {
	GUID      string
	Title     string
	Published string
	Link      string
}

// Parse decodes an RSS, Atom or JSON feed.
func Parse(data []byte) (*Document, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(model.ErrMalformedDocument, err.Error())
	}

	doc := &Document{
		Title: strings.TrimSpace(parsed.Title),
		Link:  strings.TrimSpace(parsed.Link),
		Items: make([]Item, 0, len(parsed.Items)),
	}

	for _, entry := range parsed.Items {
		doc.Items = append(doc.Items, Item{
			GUID:      strings.TrimSpace(entry.GUID),
			Title:     strings.TrimSpace(entry.Title),
			Published: strings.TrimSpace(entry.Published),
			Link:      extractLink(entry),
		})
	}

	return doc, nil
}

func extractLink(entry *gofeed.Item) string {
	for _, enclosure := range entry.Enclosures {
		if enclosure != nil && enclosure.URL != "" {
			return strings.TrimSpace(enclosure.URL)
		}
	}

	return strings.TrimSpace(entry.Link)
}

// Subscription builds the catalog record for a feed fetched from feedURL.
func (d *Document) Subscription(id uint64, feedURL string) model.Subscription {
	return model.Subscription{
		ID:      id,
		SiteURL: d.Link,
		FeedURL: feedURL,
		Title:   d.Title,
	}
}

// Episodes returns the storable items in document order. Items without a
// guid, publish date or title are dropped.
func (d *Document) Episodes(sub model.Subscription) []model.Episode {
	episodes := make([]model.Episode, 0, len(d.Items))
	for _, item := range d.Items {
		if item.GUID == "" || item.Published == "" || item.Title == "" {
			continue
		}

		link := item.Link
		if link == "" {
			link = model.NoLink
		}

		episodes = append(episodes, model.Episode{
			GUID:              item.GUID,
			Title:             item.Title,
			PubDate:           item.Published,
			Link:              link,
			SubscriptionTitle: sub.Title,
			SubscriptionID:    sub.ID,
		})
	}

	return episodes
}
