package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/pcasts/pkg/model"
)

// Local stores files in a directory on disk.
type Local struct {
	rootDir string
}

var _ Storage = (*Local)(nil)

func NewLocal(rootDir string) (*Local, error) {
	if rootDir == "" {
		return nil, errors.New("root directory can't be empty")
	}

	return &Local{rootDir: rootDir}, nil
}

func (l *Local) Create(ctx context.Context, name string, reader io.Reader) (int64, error) {
	logger := log.WithField("file", name)

	logger.Debugf("creating directory: %s", l.rootDir)
	if err := os.MkdirAll(l.rootDir, 0755); err != nil {
		return 0, errors.Wrapf(model.ErrStorageUnavailable, "failed to create download dir %s: %v", l.rootDir, err)
	}

	path := filepath.Join(l.rootDir, name)

	logger.Debugf("copying to: %s", path)
	written, err := l.copyFile(reader, path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to copy file")
	}

	logger.Debugf("copied %d bytes", written)
	return written, nil
}

func (l *Local) Size(ctx context.Context, name string) (int64, error) {
	stat, err := os.Stat(filepath.Join(l.rootDir, name))
	if err == nil {
		return stat.Size(), nil
	}

	return 0, err
}

// List returns regular files of the root directory. A missing directory
// holds no files.
func (l *Local) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.rootDir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(model.ErrStorageUnavailable, "failed to list %s: %v", l.rootDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

// copyFile writes source next to destinationPath and renames it into place
// once complete, so a failed copy never leaves a partial file.
func (l *Local) copyFile(source io.Reader, destinationPath string) (int64, error) {
	dest, err := os.CreateTemp(filepath.Dir(destinationPath), ".download-*")
	if err != nil {
		return 0, errors.Wrap(err, "failed to create destination file")
	}

	defer os.Remove(dest.Name())

	written, err := io.Copy(dest, source)
	if err != nil {
		dest.Close()
		return 0, errors.Wrap(err, "failed to copy data")
	}

	if err := dest.Close(); err != nil {
		return 0, errors.Wrap(err, "failed to close destination file")
	}

	if err := os.Chmod(dest.Name(), 0644); err != nil {
		return 0, errors.Wrap(err, "failed to set file permissions")
	}

	if err := os.Rename(dest.Name(), destinationPath); err != nil {
		return 0, errors.Wrap(err, "failed to move file into place")
	}

	return written, nil
}
