// Package cache manages the two cached artifacts (rating record and
// rating image) on top of a storage backend. Both use fixed names
// instead of record ids so the cache does not grow with every record.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Luzifer/lgtm/pkg/rating"
	"github.com/Luzifer/lgtm/pkg/storage"
)

const (
	infoBlobName = "info.json"

	imageTokenLength = 16
)

var (
	// ErrMiss signals the requested artifact is not cached
	ErrMiss = errors.New("cache miss")
	// ErrUnrecognizedExtension signals an image URL whose extension
	// cannot be determined, such images are not cached
	ErrUnrecognizedExtension = errors.New("unrecognized image extension")
)

// Cache owns reading and writing of the cached artifacts
type Cache struct {
	imageToken string
	store      storage.Storage
}

// New creates a Cache on top of the given store. The bundleID seeds the
// fixed token used in the image blob name.
func New(store storage.Storage, bundleID string) *Cache {
	h := fmt.Sprintf("%x", sha256.Sum256([]byte(bundleID)))

	return &Cache{
		imageToken: h[:imageTokenLength],
		store:      store,
	}
}

// ReadInfo returns the cached record or ErrMiss
func (c *Cache) ReadInfo(ctx context.Context) (*rating.Record, error) {
	data, err := c.store.Read(ctx, infoBlobName)
	switch {
	case err == nil:
		// This is fine

	case errors.Is(err, storage.ErrNotExist):
		return nil, ErrMiss

	default:
		return nil, errors.Wrap(err, "read info blob")
	}

	rec := new(rating.Record)
	if err = json.Unmarshal(data, rec); err != nil {
		return nil, errors.Wrap(err, "decode info blob")
	}

	return rec, nil
}

// WriteInfo replaces the cached record
func (c *Cache) WriteInfo(ctx context.Context, rec *rating.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode info blob")
	}

	return errors.Wrap(c.store.Write(ctx, infoBlobName, data), "write info blob")
}

// ImagePath returns the location of the cached image for the given URL
// or ErrMiss. Only the store is consulted, the URL is never fetched.
func (c *Cache) ImagePath(ctx context.Context, imageURL string) (string, error) {
	name, err := c.imageBlobName(imageURL)
	if err != nil {
		return "", ErrMiss
	}

	exists, err := c.store.Exists(ctx, name)
	if err != nil {
		return "", errors.Wrap(err, "check image blob")
	}

	if !exists {
		return "", ErrMiss
	}

	return joinLocation(c.store.BaseDirectory(), name), nil
}

// WriteImage replaces the cached image for the given URL. Images whose
// URL has no extension are not written and ErrUnrecognizedExtension is
// returned.
func (c *Cache) WriteImage(ctx context.Context, data []byte, imageURL string) error {
	name, err := c.imageBlobName(imageURL)
	if err != nil {
		return err
	}

	return errors.Wrap(c.store.Write(ctx, name, data), "write image blob")
}

// Clear removes the cached record and the cached images of every
// extension, independent of whether the record is still readable
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, infoBlobName); err != nil {
		return errors.Wrap(err, "delete info blob")
	}

	names, err := c.store.List(ctx, c.imageToken+".")
	if err != nil {
		return errors.Wrap(err, "list image blobs")
	}

	for _, name := range names {
		if err = c.store.Delete(ctx, name); err != nil {
			return errors.Wrapf(err, "delete image blob %q", name)
		}
	}

	return nil
}

func (c *Cache) imageBlobName(imageURL string) (string, error) {
	ext := Extension(imageURL)
	if ext == "" {
		return "", ErrUnrecognizedExtension
	}

	return c.imageToken + "." + ext, nil
}

func joinLocation(base, name string) string {
	if strings.Contains(base, "://") {
		// filepath.Join would collapse the "//" of the scheme
		return strings.TrimRight(base, "/") + "/" + name
	}
	return filepath.Join(base, name)
}
