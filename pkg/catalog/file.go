package catalog

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
)

// Mode selects how a catalog file is opened.
type Mode int

const (
	Read Mode = iota
	Append
	Truncate
)

func (m Mode) flags() int {
	switch m {
	case Append:
		return os.O_CREATE | os.O_WRONLY | os.O_APPEND
	case Truncate:
		return os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	default:
		return os.O_CREATE | os.O_RDONLY
	}
}

// Open opens dir/name with mode, creating the directory and the file when
// missing.
func Open(dir, name string, mode Mode) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(model.ErrStorageUnavailable, "failed to create directory %s: %v", dir, err)
	}

	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, mode.flags(), 0644)
	if err != nil {
		return nil, errors.Wrapf(model.ErrStorageUnavailable, "failed to open %s: %v", path, err)
	}

	return file, nil
}

// replace atomically swaps dir/name with the output of write.
func replace(dir, name string, write func(f *os.File) error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(model.ErrStorageUnavailable, "failed to create directory %s: %v", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return errors.Wrapf(model.ErrStorageUnavailable, "failed to create temp file in %s: %v", dir, err)
	}

	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to sync catalog")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close catalog")
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrap(err, "failed to set catalog permissions")
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(model.ErrStorageUnavailable, "failed to replace %s: %v", path, err)
	}

	return nil
}
