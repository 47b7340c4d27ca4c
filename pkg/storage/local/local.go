// Package local implements a storage.Storage backend for local file storage
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Luzifer/lgtm/pkg/storage"
)

const (
	storageLocalDirPermission  = 0o700
	storageLocalFilePermission = 0o600

	tempFilePattern = ".blob-*"
)

// Storage implements the storage.Storage interface for local file storage
type Storage struct {
	basePath string
}

// New returns a new local file storage rooted at basePath
func New(basePath string) (Storage, error) {
	if basePath == "" {
		return Storage{}, errors.New("storage path required")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return Storage{}, errors.Wrap(err, "resolve storage path")
	}

	return Storage{abs}, nil
}

// BaseDirectory implements the storage.Storage BaseDirectory method
func (s Storage) BaseDirectory() string { return s.basePath }

// Delete implements the storage.Storage Delete method
func (s Storage) Delete(_ context.Context, name string) error {
	blobPath, err := s.blobPath(name)
	if err != nil {
		return err
	}

	if err = os.Remove(blobPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove blob file")
	}

	return nil
}

// Exists implements the storage.Storage Exists method
func (s Storage) Exists(_ context.Context, name string) (bool, error) {
	blobPath, err := s.blobPath(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(blobPath)
	switch {
	case err == nil:
		return !info.IsDir(), nil

	case os.IsNotExist(err):
		return false, nil

	default:
		return false, fmt.Errorf("getting blob file stat: %w", err)
	}
}

// List implements the storage.Storage List method
func (s Storage) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	switch {
	case err == nil:
		// This is fine

	case os.IsNotExist(err):
		return nil, nil

	default:
		return nil, fmt.Errorf("reading storage dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if matched, _ := filepath.Match(tempFilePattern, e.Name()); matched {
			continue
		}
		names = append(names, e.Name())
	}

	return names, nil
}

// Read implements the storage.Storage Read method
func (s Storage) Read(_ context.Context, name string) ([]byte, error) {
	blobPath, err := s.blobPath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(blobPath) //#nosec:G304 // Path is confined to basePath
	switch {
	case err == nil:
		return data, nil

	case os.IsNotExist(err):
		return nil, storage.ErrNotExist

	default:
		return nil, fmt.Errorf("reading blob file: %w", err)
	}
}

// Write implements the storage.Storage Write method by writing into a
// temporary file next to the target and renaming it over the target.
func (s Storage) Write(_ context.Context, name string, data []byte) (err error) {
	blobPath, err := s.blobPath(name)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(blobPath), storageLocalDirPermission); err != nil {
		return errors.Wrap(err, "create storage dir")
	}

	f, err := os.CreateTemp(filepath.Dir(blobPath), tempFilePattern)
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tempName := f.Name()

	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(tempName); rmErr != nil && !os.IsNotExist(rmErr) {
			logrus.WithError(rmErr).WithField("path", tempName).Error("removing temp file (leaked file)")
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "write temp file")
	}

	if err = f.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}

	if err = os.Chmod(tempName, storageLocalFilePermission); err != nil {
		return errors.Wrap(err, "set blob file permission")
	}

	return errors.Wrap(os.Rename(tempName, blobPath), "replace blob file")
}

func (s Storage) blobPath(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", errors.Errorf("invalid blob name %q", name)
	}

	return filepath.Join(s.basePath, clean), nil
}
