// Package refresh decides per invocation whether to show the cached
// record and refresh it in a detached background process, or to fetch
// the record synchronously because nothing is cached yet.
package refresh

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Luzifer/lgtm/pkg/cache"
	"github.com/Luzifer/lgtm/pkg/rating"
	"github.com/Luzifer/lgtm/pkg/result"
)

const (
	// ExitSuccess is returned by Run when the invocation succeeded
	ExitSuccess = 0
	// ExitFailure is returned by Run when the background refresh could
	// not persist the record or the foreground could not show anything
	ExitFailure = 1
)

type (
	// Config selects the behavior of the Orchestrator
	Config struct {
		// Background selects the refresh mode instead of the show mode
		Background bool
		// BypassCache ignores a cached record in show mode
		BypassCache bool
		// BackgroundArgs are passed to the Spawner to start the
		// background refresh
		BackgroundArgs []string
	}

	// Output receives the rendered result list
	Output interface {
		Write(entries []result.Entry) error
	}

	// Orchestrator implements the show / refresh state machine
	Orchestrator struct {
		cache   *cache.Cache
		cfg     Config
		fetcher rating.Fetcher
		logger  logrus.FieldLogger
		output  Output
		spawner Spawner
	}
)

// New creates an Orchestrator
func New(
	cfg Config,
	c *cache.Cache,
	fetcher rating.Fetcher,
	spawner Spawner,
	output Output,
	logger logrus.FieldLogger,
) *Orchestrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Orchestrator{
		cache:   c,
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		output:  output,
		spawner: spawner,
	}
}

// Run executes the mode selected by the Config and returns the process
// exit code
func (o *Orchestrator) Run(ctx context.Context) int {
	if o.cfg.Background {
		if err := o.Refresh(ctx); err != nil {
			o.logger.WithError(err).Error("background refresh failed")
			return ExitFailure
		}
		return ExitSuccess
	}

	if err := o.Show(ctx); err != nil {
		o.logger.WithError(err).Error("unable to show rating")
		return ExitFailure
	}
	return ExitSuccess
}

// Show writes the cached record to the Output, fetching it first when
// nothing usable is cached, and afterwards requests a background
// refresh without waiting for it.
func (o *Orchestrator) Show(ctx context.Context) error {
	rec, err := o.loadRecord(ctx)
	if err != nil {
		return err
	}

	imagePath, err := o.cache.ImagePath(ctx, rec.ActualImageURL)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		o.logger.WithError(err).Warn("unable to resolve cached image")
	}

	if err = o.output.Write(result.Render(*rec, imagePath)); err != nil {
		return errors.Wrap(err, "write result list")
	}

	if err = o.spawner.SpawnBackgroundRefresh(o.cfg.BackgroundArgs); err != nil {
		o.logger.WithError(err).Warn("unable to start background refresh")
	}

	return nil
}

// Refresh fetches the current record and its image and replaces the
// cached artifacts. Nothing is replaced when the record cannot be
// fetched. Image failures are logged only.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	rec, err := o.fetcher.FetchRecord(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch record")
	}

	if err = o.cache.WriteInfo(ctx, rec); err != nil {
		return errors.Wrap(err, "persist record")
	}

	o.storeImage(ctx, rec)

	o.logger.WithField("id", rec.ID).Debug("cache refreshed")
	return nil
}

func (o *Orchestrator) loadRecord(ctx context.Context) (*rating.Record, error) {
	if !o.cfg.BypassCache {
		rec, err := o.cache.ReadInfo(ctx)
		switch {
		case err == nil:
			o.logger.WithField("id", rec.ID).Debug("serving record from cache")
			return rec, nil

		case errors.Is(err, cache.ErrMiss):
			o.logger.Debug("no cached record")

		default:
			o.logger.WithError(err).Warn("ignoring unreadable cached record")
		}
	}

	rec, err := o.fetcher.FetchRecord(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch record")
	}

	if err = o.cache.WriteInfo(ctx, rec); err != nil {
		o.logger.WithError(err).Warn("unable to cache fetched record")
	}

	o.storeImage(ctx, rec)

	return rec, nil
}

func (o *Orchestrator) storeImage(ctx context.Context, rec *rating.Record) {
	logger := o.logger.WithField("url", rec.ActualImageURL)

	if cache.Extension(rec.ActualImageURL) == "" {
		logger.Debug("image URL has no extension, not caching image")
		return
	}

	data, err := o.fetcher.FetchImage(ctx, rec.ActualImageURL)
	if err != nil {
		logger.WithError(err).Warn("unable to fetch image")
		return
	}

	if err = o.cache.WriteImage(ctx, data, rec.ActualImageURL); err != nil {
		logger.WithError(err).Warn("unable to cache image")
	}
}
