package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// BundleStore keeps every entry of one report run in a single JSON file,
// keyed by cache key. The file is read on first use and rewritten after
// every Set, so an interrupted run keeps what it already fetched.
type BundleStore struct {
	path    string
	loaded  bool
	entries map[string]json.RawMessage
}

// Ensure BundleStore implements the Store interface
var _ Store = &BundleStore{}

func NewBundleStore(path string) *BundleStore {
	return &BundleStore{path: path}
}

func (b *BundleStore) Path() string {
	return b.path
}

func (b *BundleStore) Len() int {
	b.load()
	return len(b.entries)
}

func (b *BundleStore) Get(key string) ([]byte, error) {
	b.load()

	raw, ok := b.entries[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), raw...), nil
}

func (b *BundleStore) Set(key string, value []byte) error {
	b.load()

	b.entries[key] = append(json.RawMessage(nil), value...)
	return b.flush()
}

func (b *BundleStore) Delete(key string) error {
	b.load()

	if _, ok := b.entries[key]; !ok {
		return nil
	}
	delete(b.entries, key)
	return b.flush()
}

// load treats a missing, empty or corrupt bundle as an empty one.
func (b *BundleStore) load() {
	if b.loaded {
		return
	}
	b.loaded = true
	b.entries = make(map[string]json.RawMessage)

	raw, err := os.ReadFile(b.path)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return
	}
	for k, v := range entries {
		if len(bytes.TrimSpace(v)) > 0 && string(bytes.TrimSpace(v)) != "null" {
			b.entries[k] = v
		}
	}
}

func (b *BundleStore) flush() error {
	data, err := json.MarshalIndent(b.entries, "", "    ")
	if err != nil {
		return err
	}
	if err := ensureDir(filepath.Dir(b.path)); err != nil {
		return err
	}
	return writeFileAtomic(b.path, data)
}
