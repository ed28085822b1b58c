package fs

import (
	"context"
	"io"
)

// Storage is where downloaded episodes are materialized.
type Storage interface {
	// Create stores the content of reader under name, replacing any existing file.
	Create(ctx context.Context, name string, reader io.Reader) (int64, error)

	// Size returns the size of the file in bytes, os.ErrNotExist if there is none.
	Size(ctx context.Context, name string) (int64, error)

	// List returns the names of all stored files.
	List(ctx context.Context) ([]string, error)
}
