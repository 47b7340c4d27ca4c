// Package gcs implements a storage backend saving blobs in GCS
package gcs

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"github.com/Luzifer/lgtm/pkg/storage"
)

// Storage implements the storage.Storage interface for GCS storage
type Storage struct {
	bucket string
	client *gcs.Client
	prefix string
}

// New returns a new GCS storage backend for a gs://bucket/prefix URI
func New(ctx context.Context, bucketURI string) (*Storage, error) {
	uri, err := url.Parse(bucketURI)
	if err != nil {
		return nil, errors.Wrap(err, "parse GCS bucket URI")
	}

	if uri.Scheme != "gs" || uri.Host == "" {
		return nil, errors.New("invalid GCS bucket URI")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create GCS client")
	}

	return &Storage{
		bucket: uri.Host,
		client: client,
		prefix: strings.Trim(uri.Path, "/"),
	}, nil
}

// BaseDirectory implements the storage.Storage BaseDirectory method
func (s Storage) BaseDirectory() string {
	return strings.TrimRight("gs://"+path.Join(s.bucket, s.prefix), "/")
}

// Delete implements the storage.Storage Delete method
func (s Storage) Delete(ctx context.Context, name string) error {
	err := s.object(name).Delete(ctx)
	switch {
	case err == nil, errors.Is(err, gcs.ErrObjectNotExist):
		return nil

	default:
		return errors.Wrap(err, "delete object")
	}
}

// Exists implements the storage.Storage Exists method
func (s Storage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.object(name).Attrs(ctx)
	switch {
	case err == nil:
		return true, nil

	case errors.Is(err, gcs.ErrObjectNotExist):
		return false, nil

	default:
		return false, errors.Wrap(err, "get object attrs")
	}
}

// List implements the storage.Storage List method
func (s Storage) List(ctx context.Context, prefix string) ([]string, error) {
	objPrefix := strings.TrimLeft(path.Join(s.prefix, prefix), "/")
	if prefix == "" && s.prefix != "" {
		objPrefix += "/"
	}

	var (
		it    = s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{Prefix: objPrefix})
		names []string
	)

	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "list objects")
		}

		name := strings.TrimPrefix(attrs.Name, strings.Trim(s.prefix, "/"))
		name = strings.TrimLeft(name, "/")
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}

// Read implements the storage.Storage Read method
func (s Storage) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := s.object(name).NewReader(ctx)
	switch {
	case err == nil:
		// This is fine

	case errors.Is(err, gcs.ErrObjectNotExist):
		return nil, storage.ErrNotExist // Surrounding code reacts on ErrNotExist

	default:
		return nil, errors.Wrap(err, "get object reader")
	}
	defer func() {
		if err := r.Close(); err != nil {
			logrus.WithError(err).Error("closing object reader (leaked fd)")
		}
	}()

	data, err := io.ReadAll(r)
	return data, errors.Wrap(err, "read object")
}

// Write implements the storage.Storage Write method. GCS only makes an
// object visible once the upload is finalized, so replacing is atomic.
func (s Storage) Write(ctx context.Context, name string, data []byte) error {
	w := s.object(name).NewWriter(ctx)

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "upload content")
	}

	return errors.Wrap(w.Close(), "finish upload")
}

func (s Storage) object(name string) *gcs.ObjectHandle {
	objPath := strings.TrimLeft(path.Join(s.prefix, name), "/")
	return s.client.Bucket(s.bucket).Object(objPath)
}
