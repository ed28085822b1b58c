package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/fs"
	"github.com/mxpv/pcasts/pkg/model"
)

const (
	// AppDirEnv overrides the application directory.
	AppDirEnv = "PODCASTS_DIR"
	// DownloadDirEnv overrides the download directory.
	DownloadDirEnv = "PODCASTS_DOWNLOAD_DIR"
)

// StorageType selects where downloaded episodes go.
type StorageType string

const (
	StorageLocal = StorageType("local")
	StorageS3    = StorageType("s3")
)

type Storage struct {
	// AppDir keeps the subscription catalog and episode catalogs.
	AppDir string `toml:"app_dir"`
	// DownloadDir receives downloaded episodes when Type is local.
	DownloadDir string `toml:"download_dir"`
	// Type is either "local" (default) or "s3"
	Type StorageType `toml:"type"`
	// S3 bucket configuration, used when Type is s3
	S3 fs.S3Config `toml:"s3"`
}

type Fetch struct {
	// Workers is the number of concurrent requests.
	Workers int `toml:"workers"`
	// FeedTimeout bounds each feed document request.
	// Media downloads are never bounded.
	FeedTimeout Duration `toml:"feed_timeout"`
	// UserAgent sent with every request
	UserAgent string `toml:"user_agent"`
}

type Log struct {
	// Level is one of logrus levels (debug, info, warn, ...)
	Level string `toml:"level"`
}

type Config struct {
	Storage Storage `toml:"storage"`
	Fetch   Fetch   `toml:"fetch"`
	Log     Log     `toml:"log"`
}

// DefaultAppDir returns $PODCASTS_DIR or ~/.podcasts.
func DefaultAppDir() (string, error) {
	if dir := os.Getenv(AppDirEnv); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to find home directory")
	}

	return filepath.Join(home, ".podcasts"), nil
}

// LoadConfig loads TOML configuration from a file path. A missing file
// yields the defaults. Environment variables take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	config := Config{}

	if path != "" {
		if _, err := toml.DecodeFile(path, &config); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	config.applyEnv()

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(AppDirEnv); dir != "" {
		c.Storage.AppDir = dir
	}

	if dir := os.Getenv(DownloadDirEnv); dir != "" {
		c.Storage.DownloadDir = dir
	}
}

func (c *Config) applyDefaults() error {
	if c.Storage.AppDir == "" {
		dir, err := DefaultAppDir()
		if err != nil {
			return err
		}
		c.Storage.AppDir = dir
	}

	if c.Storage.DownloadDir == "" {
		c.Storage.DownloadDir = filepath.Join(c.Storage.AppDir, "episodes")
	}

	if c.Storage.Type == "" {
		c.Storage.Type = StorageLocal
	}

	if c.Fetch.Workers == 0 {
		c.Fetch.Workers = model.DefaultWorkers
	}

	if c.Fetch.FeedTimeout.Duration == 0 {
		c.Fetch.FeedTimeout.Duration = model.DefaultFeedTimeout
	}

	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = model.DefaultUserAgent
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	return nil
}

func (c *Config) validate() error {
	var result *multierror.Error

	if c.Fetch.Workers < 0 {
		result = multierror.Append(result, errors.Errorf("number of workers must be positive (got %d)", c.Fetch.Workers))
	}

	if c.Fetch.FeedTimeout.Duration < 0 {
		result = multierror.Append(result, errors.New("feed timeout can't be negative"))
	}

	switch c.Storage.Type {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			result = multierror.Append(result, errors.New("S3 bucket is required for s3 storage"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("unsupported storage type %q", c.Storage.Type))
	}

	return result.ErrorOrNil()
}

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}
