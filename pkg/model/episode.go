package model

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// NoLink is stored in place of a missing episode link.
const NoLink = "-"

// Episode is a single feed entry as stored in a per-subscription catalog.
type Episode struct {
	GUID              string
	Title             string
	PubDate           string
	Link              string
	SubscriptionTitle string
	SubscriptionID    uint64
}

// HasLink reports whether the episode can be downloaded.
func (e *Episode) HasLink() bool {
	return e.Link != "" && e.Link != NoLink
}

// Extension returns the file extension of the episode link, without the dot.
func (e *Episode) Extension() string {
	link := e.Link
	if u, err := url.Parse(link); err == nil {
		link = u.Path
	}

	ext := strings.TrimPrefix(path.Ext(link), ".")
	if ext == "" {
		return DefaultExtension
	}

	return ext
}

// FileName is the name the episode is materialized under in the download directory.
func (e *Episode) FileName() string {
	return fmt.Sprintf("%s_%s.%s", sanitize(e.SubscriptionTitle), sanitize(e.Title), e.Extension())
}

var separators = strings.NewReplacer("/", "-", "\\", "-")

func sanitize(name string) string {
	return separators.Replace(name)
}
