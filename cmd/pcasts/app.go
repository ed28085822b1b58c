package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/pcasts/pkg/catalog"
	"github.com/mxpv/pcasts/pkg/config"
	"github.com/mxpv/pcasts/pkg/fetch"
	"github.com/mxpv/pcasts/pkg/fs"
	"github.com/mxpv/pcasts/pkg/reconcile"
)

// App wires the reconcilers to the configured storage and network.
type App struct {
	config        *config.Config
	out           io.Writer
	subscriptions *reconcile.Subscriptions
	episodes      *reconcile.Episodes
}

func NewApp(opts *Opts) (*App, error) {
	configPath, err := resolveConfigPath(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	log.Debugf("loading configuration %q", configPath)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration file")
	}

	if !opts.Debug {
		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.Log.Level)
		}
		log.SetLevel(level)
	}

	storage, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	var options []fetch.Option
	if renderer := newProgressRenderer(os.Stderr); renderer != nil {
		log.SetOutput(renderer)
		options = append(options, fetch.WithMonitor(renderer))
	}

	var (
		client       = fetch.NewHTTP(&http.Client{}, cfg.Fetch.UserAgent)
		orchestrator = fetch.New(client, cfg.Fetch.Workers, options...)
		store        = catalog.New(cfg.Storage.AppDir)
		timeout      = cfg.Fetch.FeedTimeout.Duration
	)

	log.WithFields(log.Fields{
		"app_dir": cfg.Storage.AppDir,
		"storage": cfg.Storage.Type,
		"workers": cfg.Fetch.Workers,
	}).Debug("configured")

	return &App{
		config:        cfg,
		out:           os.Stdout,
		subscriptions: reconcile.NewSubscriptions(store, orchestrator, timeout),
		episodes:      reconcile.NewEpisodes(store, orchestrator, storage, timeout),
	}, nil
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	dir, err := config.DefaultAppDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.toml"), nil
}

func newStorage(cfg *config.Config) (fs.Storage, error) {
	switch cfg.Storage.Type {
	case config.StorageS3:
		return fs.NewS3(cfg.Storage.S3)
	default:
		return fs.NewLocal(cfg.Storage.DownloadDir)
	}
}

// withApp builds the application from the global options and runs fn until
// it returns or the process is interrupted.
func withApp(fn func(ctx context.Context, app *App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := NewApp(&opts)
	if err != nil {
		return err
	}

	return fn(ctx, app)
}
