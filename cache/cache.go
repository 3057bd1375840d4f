package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kardolus/lms-reports/api"
	"go.uber.org/zap"
)

// Identity is the logical identity of one fetch. Pagination continuations
// never take part in it.
type Identity struct {
	Endpoint string
	Params   url.Values
	Fields   []string
}

func IdentityOf(req api.Request) Identity {
	return Identity{Endpoint: req.Path, Params: req.Params, Fields: req.Whitelist}
}

// Canonical renders the identity with parameter names, the values of each
// name and the fields sorted. Argument order never changes the result.
func (i Identity) Canonical() string {
	var b strings.Builder
	b.WriteString(i.Endpoint)

	if len(i.Params) > 0 {
		keys := make([]string, 0, len(i.Params))
		for k := range i.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('?')
		first := true
		for _, k := range keys {
			for _, v := range sorted(i.Params[k]) {
				if !first {
					b.WriteByte('&')
				}
				first = false
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
	}

	if len(i.Fields) > 0 {
		b.WriteString("#fields=")
		b.WriteString(strings.Join(sorted(i.Fields), ","))
	}

	return b.String()
}

func sorted(values []string) []string {
	result := append([]string(nil), values...)
	sort.Strings(result)
	return result
}

// ComputeKey returns the sha256 hex digest of the canonical identity.
func ComputeKey(id Identity) string {
	return hash(id.Canonical())
}

type Timer interface {
	Now() time.Time
}

type RealTime struct{}

func (r *RealTime) Now() time.Time {
	return time.Now()
}

type Cache struct {
	store Store
	timer Timer
}

func New(store Store) *Cache {
	return &Cache{
		store: store,
		timer: &RealTime{},
	}
}

func (c *Cache) WithTimer(t Timer) *Cache {
	c.timer = t
	return c
}

// Load returns the stored ResultSet for the identity. A missing, empty or
// unparseable entry is a miss, never an error. Every call decodes a fresh
// value, so callers cannot alter what is stored.
func (c *Cache) Load(id Identity) (api.ResultSet, bool) {
	canonical := id.Canonical()
	key := hash(canonical)
	sugar := zap.S()

	raw, err := c.store.Get(key)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		sugar.Debugf("Cache miss %s (%s)", key, canonical)
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var entry Entry
	if err := dec.Decode(&entry); err != nil {
		sugar.Debugf("Cache miss %s (%s): unreadable entry: %v", key, canonical, err)
		return nil, false
	}
	if entry.Key != canonical || entry.Records == nil {
		sugar.Debugf("Cache miss %s (%s): entry belongs to %s", key, canonical, entry.Key)
		return nil, false
	}

	sugar.Infof("Retrieved %s from cache [params=%s]", id.Endpoint, id.Params.Encode())
	return entry.Records, true
}

// Save replaces whatever is stored under the identity.
func (c *Cache) Save(id Identity, records api.ResultSet) error {
	if records == nil {
		records = api.ResultSet{}
	}

	entry := Entry{
		Key:       id.Canonical(),
		Endpoint:  id.Endpoint,
		Params:    id.Params,
		Fields:    id.Fields,
		Records:   records,
		UpdatedAt: c.timer.Now().UTC(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.store.Set(hash(entry.Key), raw)
}

func (c *Cache) Delete(id Identity) error {
	return c.store.Delete(ComputeKey(id))
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
