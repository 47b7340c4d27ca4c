package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/Luzifer/lgtm/pkg/storage"
	"github.com/Luzifer/lgtm/pkg/storage/gcs"
	"github.com/Luzifer/lgtm/pkg/storage/local"
)

func isGCSLocation(location string) bool { return strings.HasPrefix(location, "gs://") }

// resolveStorageLocation picks the explicitly configured location over
// the workflow data dir
func resolveStorageLocation(configured, dataDir string) string {
	if configured != "" {
		return configured
	}
	return dataDir
}

func newStorage(ctx context.Context, location string) (storage.Storage, error) {
	if isGCSLocation(location) {
		s, err := gcs.New(ctx, location)
		if err != nil {
			return nil, errors.Wrap(err, "create GCS storage")
		}
		return s, nil
	}

	s, err := local.New(location)
	if err != nil {
		return nil, errors.Wrap(err, "create local storage")
	}
	return s, nil
}
