package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:generate mockgen -destination=storemocks_test.go -package=cache_test github.com/kardolus/lms-reports/cache Store
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// FileStore keeps one JSON file per cache key.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
	}
}

// Ensure FileStore implements the Store interface
var _ Store = &FileStore{}

type FileStore struct {
	baseDir string
}

func (f *FileStore) Get(key string) ([]byte, error) {
	return os.ReadFile(f.pathForKey(key))
}

func (f *FileStore) Set(key string, value []byte) error {
	if err := ensureDir(f.baseDir); err != nil {
		return err
	}
	return writeFileAtomic(f.pathForKey(key), value)
}

func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.pathForKey(key))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) pathForKey(key string) string {
	// keys are sha256 hex digests, safe as file names
	return filepath.Join(f.baseDir, key+".json")
}

func ensureDir(dir string) error {
	// 0700: single-user CLI cache
	return os.MkdirAll(dir, 0o700)
}

// writeFileAtomic writes to a temp file in the destination directory and
// renames it over dst, so readers never observe a half written entry.
func writeFileAtomic(dst string, value []byte) error {
	dir := filepath.Dir(dst)

	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%s.*.tmp", filepath.Base(dst)))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Clean up temp file on failure.
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(value); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomic replace on POSIX; on Windows, Rename may fail if dst exists.
	if err := os.Rename(tmpName, dst); err != nil {
		if errors.Is(err, os.ErrExist) || errors.Is(err, os.ErrPermission) {
			_ = os.Remove(dst)
			return os.Rename(tmpName, dst)
		}
		return err
	}

	return nil
}
