package model

import (
	"time"
)

const (
	DefaultWorkers     = 4
	DefaultFeedTimeout = 10 * time.Second
	DefaultUserAgent   = "pcasts"
	DefaultExtension   = "mp3"
)
