package model

// Subscription is a tracked feed. ID is derived from FeedURL.
type Subscription struct {
	ID      uint64
	SiteURL string
	FeedURL string
	Title   string
}
