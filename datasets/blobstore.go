package datasets

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// BlobStore is the opaque persistence used by CacheStore. Names are
// slash-separated paths relative to the store root.
type BlobStore interface {
	// Exists reports whether the named blob exists without reading it.
	Exists(name string) bool

	// ReadFile reads the whole blob.
	ReadFile(name string) ([]byte, error)

	// WriteFile writes the blob, creating parent namespaces as needed.
	WriteFile(name string, data []byte) error

	// Remove deletes the blob. Removing a missing blob is not an error.
	Remove(name string) error
}

// FSBlobStore stores blobs as files below Root.
type FSBlobStore struct {
	Root string
}

func (s FSBlobStore) path(name string) string {
	return filepath.Join(s.Root, filepath.FromSlash(name))
}

// Exists checks if the blob file exists.
func (s FSBlobStore) Exists(name string) bool {
	info, err := os.Stat(s.path(name))
	return err == nil && !info.IsDir()
}

// ReadFile reads the blob file.
func (s FSBlobStore) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(s.path(name))
}

// WriteFile writes the blob through a temp file in the same directory and
// renames it into place, so readers never observe a partial blob.
func (s FSBlobStore) WriteFile(name string, data []byte) error {
	path := s.path(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		log.Printf("[Cache] warning: sync temp blob %s: %v", tmpName, err)
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Remove deletes the blob file.
func (s FSBlobStore) Remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
