package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Mode string

const (
	// ModeCall stores one file per fetch.
	ModeCall Mode = "call"
	// ModeRun stores every fetch of one report run in a shared file.
	ModeRun Mode = "run"
	// ModeSQLite stores every fetch in one SQLite database.
	ModeSQLite Mode = "sqlite"
	// ModeOff disables caching.
	ModeOff Mode = "off"

	sqliteFileName = "cache.db"
	bundleFileName = "cache-%s.json"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCall, ModeRun, ModeSQLite, ModeOff:
		return m, nil
	default:
		return "", fmt.Errorf("unknown cache mode %q: expected one of %s, %s, %s, %s", s, ModeCall, ModeRun, ModeSQLite, ModeOff)
	}
}

// NewStore opens the backend for a mode. run identifies the report run and
// names the shared file in ModeRun. The returned closer must be called once
// the run is done.
func NewStore(mode Mode, dir string, run Identity) (Store, io.Closer, error) {
	switch mode {
	case ModeCall:
		return NewFileStore(dir), nopCloser{}, nil
	case ModeRun:
		return NewBundleStore(BundlePath(dir, run)), nopCloser{}, nil
	case ModeSQLite:
		s, err := OpenSQLiteStore(filepath.Join(dir, sqliteFileName))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case ModeOff:
		return NopStore{}, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache mode %q", mode)
	}
}

// BundlePath is the shared cache file of a report run.
func BundlePath(dir string, run Identity) string {
	return filepath.Join(dir, fmt.Sprintf(bundleFileName, ComputeKey(run)))
}

// NopStore never holds anything.
type NopStore struct{}

// Ensure NopStore implements the Store interface
var _ Store = NopStore{}

func (NopStore) Get(string) ([]byte, error) { return nil, os.ErrNotExist }
func (NopStore) Set(string, []byte) error { return nil }
func (NopStore) Delete(string) error { return nil }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
