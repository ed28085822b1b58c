package model

import (
	"errors"
)

var (
	// Transport level failures of a single fetch.
	ErrTimeout   = errors.New("request timed out")
	ErrNotFound  = errors.New("resource not found")
	ErrTransport = errors.New("transport error")

	ErrMalformedDocument  = errors.New("malformed feed document")
	ErrRecordNotFound     = errors.New("record not found")
	ErrSerialization      = errors.New("catalog row doesn't match the expected shape")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
