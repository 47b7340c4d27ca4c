package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Luzifer/lgtm/pkg/alfred"
	"github.com/Luzifer/lgtm/pkg/cache"
	"github.com/Luzifer/lgtm/pkg/rating"
	"github.com/Luzifer/lgtm/pkg/refresh"
	"github.com/Luzifer/rconfig/v2"
)

type config struct {
	Background     bool          `flag:"background" default:"false" description:"Refresh the cache instead of showing the current rating"`
	BundleID       string        `flag:"bundle-id" default:"com.xn--nyqr7s4vc72p.lgtm-workflow" description:"Workflow bundle ID used outside Alfred" validate:"nonzero"`
	ClearCache     bool          `flag:"clear-cache" default:"false" description:"Remove the cached rating and images and exit"`
	Endpoint       string        `flag:"endpoint" default:"http://www.lgtm.in/g" description:"URL of the rating API" validate:"nonzero"`
	Help           bool          `flag:"help,h" default:"false" description:"Prints this help message and exits"`
	LogFile        string        `flag:"log-file" default:"" description:"Write logs to this rotated file instead of stderr"`
	LogLevel       string        `flag:"log-level" default:"info" description:"Log level (debug, info, warn, error, fatal)"`
	NoCache        bool          `flag:"no-cache" default:"false" description:"Ignore the cached rating and fetch a fresh one"`
	Storage        string        `flag:"storage" default:"" description:"Directory or gs://bucket/prefix to store cached files in (default: workflow data dir)"`
	Timeout        time.Duration `flag:"timeout" default:"10s" description:"Timeout for requests to the rating API"`
	UserAgent      string        `flag:"user-agent" default:"" description:"User-Agent to send with requests (default lgtm/<version>)"`
	VersionAndExit bool          `flag:"version" default:"false" description:"Prints current version and exits"`
}

var version = "dev"

func parseConfig() (config, error) {
	var cfg config

	rconfig.AutoEnv(true)
	if err := rconfig.ParseAndValidate(&cfg); err != nil {
		return cfg, errors.Wrap(err, "parse commandline options")
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = "lgtm/" + version
	}

	return cfg, nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.WithError(err).Fatal("Unable to parse commandline options")
	}

	if cfg.Help {
		fmt.Printf("Usage: %s [options]\n", os.Args[0])
		rconfig.Usage()
		os.Exit(0)
	}

	if cfg.VersionAndExit {
		fmt.Printf("lgtm %s\n", version)
		os.Exit(0)
	}

	if l, err := log.ParseLevel(cfg.LogLevel); err != nil {
		log.WithError(err).Fatal("Unable to parse log level")
	} else {
		log.SetLevel(l)
	}

	os.Exit(run(context.Background(), cfg, log.StandardLogger()))
}

func run(ctx context.Context, cfg config, logger *log.Logger) int {
	wf, err := alfred.New(cfg.BundleID)
	if err != nil {
		logger.WithError(err).Error("Unable to initialize workflow")
		return refresh.ExitFailure
	}

	if err = setupLogOutput(logger, cfg.LogFile, cfg.Background, wf.CacheDir()); err != nil {
		logger.WithError(err).Warn("Unable to set up log file, logging to stderr")
	}

	storageLocation := resolveStorageLocation(cfg.Storage, wf.DataDir())

	store, err := newStorage(ctx, storageLocation)
	if err != nil {
		logger.WithError(err).Error("Unable to initialize storage")
		return refresh.ExitFailure
	}

	c := cache.New(store, wf.BundleID())

	if cfg.ClearCache {
		if err = c.Clear(ctx); err != nil {
			logger.WithError(err).Error("Unable to clear cache")
			return refresh.ExitFailure
		}
		return refresh.ExitSuccess
	}

	entry := logger.WithFields(log.Fields{
		"background": cfg.Background,
		"storage":    storageLocation,
	})

	return refresh.New(
		refresh.Config{
			Background:     cfg.Background,
			BypassCache:    cfg.NoCache,
			BackgroundArgs: backgroundArgs(cfg, storageLocation),
		},
		c,
		rating.NewHTTPFetcher(cfg.Endpoint, cfg.UserAgent, cfg.Timeout, entry),
		wf,
		wf,
		entry,
	).Run(ctx)
}

// backgroundArgs reproduces the effective configuration for the
// background invocation so it refreshes the same cache
func backgroundArgs(cfg config, storageLocation string) []string {
	args := []string{
		"--background",
		"--bundle-id=" + cfg.BundleID,
		"--endpoint=" + cfg.Endpoint,
		"--log-level=" + cfg.LogLevel,
		"--storage=" + storageLocation,
		"--timeout=" + cfg.Timeout.String(),
		"--user-agent=" + cfg.UserAgent,
	}

	if cfg.LogFile != "" {
		args = append(args, "--log-file="+cfg.LogFile)
	}

	return args
}
