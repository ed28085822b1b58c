package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
)

// HTTP fetches resources over the network.
type HTTP struct {
	client    *http.Client
	userAgent string
}

var _ Fetcher = (*HTTP)(nil)

// NewHTTP creates a Fetcher backed by client. Timeouts come from the request
// context, so client should not carry its own.
func NewHTTP(client *http.Client, userAgent string) *HTTP {
	if client == nil {
		client = &http.Client{}
	}

	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}

	return &HTTP{client: client, userAgent: userAgent}
}

// Get downloads url. Only 404 is treated as a failure, any other completed
// response returns its body.
func (h *HTTP) Get(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(model.ErrNotFound, "HTTP %d", resp.StatusCode)
	}

	buf := &bytes.Buffer{}
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	var writer io.Writer = buf
	if progress != nil {
		writer = &progressWriter{writer: buf, total: resp.ContentLength, onUpdate: progress}
		progress(0, resp.ContentLength)
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	return buf.Bytes(), nil
}

// progressWriter counts bytes passing through and reports them.
type progressWriter struct {
	writer   io.Writer
	total    int64
	written  int64
	onUpdate ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	pw.onUpdate(pw.written, pw.total)
	return n, err
}
