package fetch

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
)

// Fixtures serves canned responses keyed by URL. Unknown URLs are reported as
// not found.
type Fixtures struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	failures map[string]error
	delays   map[string]time.Duration
	requests map[string]int
}

var _ Fetcher = (*Fixtures)(nil)

func NewFixtures(bodies map[string][]byte) *Fixtures {
	f := &Fixtures{
		bodies:   map[string][]byte{},
		failures: map[string]error{},
		delays:   map[string]time.Duration{},
		requests: map[string]int{},
	}

	for url, body := range bodies {
		f.bodies[url] = body
	}

	return f
}

// LoadFixtures reads the response for each URL from the file it maps to.
func LoadFixtures(files map[string]string) (*Fixtures, error) {
	bodies := make(map[string][]byte, len(files))
	for url, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read fixture for %s", url)
		}
		bodies[url] = data
	}

	return NewFixtures(bodies), nil
}

// Set replaces the response for url.
func (f *Fixtures) Set(url string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = body
}

// Fail makes every request to url return err.
func (f *Fixtures) Fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[url] = err
}

// Delay holds requests to url for d, or until the request context is done.
func (f *Fixtures) Delay(url string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[url] = d
}

// Requests returns how many times url has been requested.
func (f *Fixtures) Requests(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[url]
}

func (f *Fixtures) Get(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	f.mu.Lock()
	f.requests[url]++
	body, ok := f.bodies[url]
	failure := f.failures[url]
	delay := f.delays[url]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if failure != nil {
		return nil, failure
	}

	if !ok {
		return nil, errors.Wrap(model.ErrNotFound, url)
	}

	if progress != nil {
		total := int64(len(body))
		progress(0, total)
		progress(total, total)
	}

	return body, nil
}
