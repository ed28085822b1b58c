package fetch

import (
	"context"
	"net"

	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
)

// Kind classifies the result of a request.
type Kind int

const (
	Pending Kind = iota
	Success
	Timeout
	NotFound
	TransportError
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	case NotFound:
		return "not found"
	case TransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of fetching URL.
// Body is set only on Success, Err on every other kind.
type Outcome struct {
	URL  string
	Kind Kind
	Body []byte
	Err  error
}

// OK reports whether the request succeeded.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

func newOutcome(url string, body []byte, err error) Outcome {
	if err == nil {
		return Outcome{URL: url, Kind: Success, Body: body}
	}

	switch kind := classify(err); kind {
	case Timeout:
		return Outcome{URL: url, Kind: kind, Err: errors.Wrap(model.ErrTimeout, err.Error())}
	case NotFound:
		return Outcome{URL: url, Kind: kind, Err: errors.Wrap(model.ErrNotFound, url)}
	default:
		return Outcome{URL: url, Kind: kind, Err: &transportError{cause: err}}
	}
}

func classify(err error) Kind {
	if errors.Is(err, model.ErrNotFound) {
		return NotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, model.ErrTimeout) {
		return Timeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}

	return TransportError
}

// transportError keeps the underlying cause while matching model.ErrTransport.
type transportError struct {
	cause error
}

func (e *transportError) Error() string {
	return model.ErrTransport.Error() + ": " + e.cause.Error()
}

func (e *transportError) Is(target error) bool {
	return target == model.ErrTransport
}

func (e *transportError) Unwrap() error {
	return e.cause
}
