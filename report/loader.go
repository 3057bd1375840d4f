package report

import (
	"context"
	"fmt"

	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/cache"
)

//go:generate mockgen -destination=fetchermocks_test.go -package=report_test github.com/kardolus/lms-reports/report Fetcher
type Fetcher interface {
	Fetch(ctx context.Context, req api.Request) (api.ResultSet, error)
}

// Loader answers requests from the cache and falls back to the fetcher on a
// miss, storing what it fetched.
type Loader struct {
	fetcher Fetcher
	cache   *cache.Cache
}

func NewLoader(fetcher Fetcher, c *cache.Cache) *Loader {
	return &Loader{
		fetcher: fetcher,
		cache:   c,
	}
}

func (l *Loader) Load(ctx context.Context, req api.Request) (api.ResultSet, error) {
	id := cache.IdentityOf(req)

	if l.cache != nil {
		if records, ok := l.cache.Load(id); ok {
			return records, nil
		}
	}

	records, err := l.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Save(id, records); err != nil {
			return nil, fmt.Errorf("failed to cache %s: %w", req.Path, err)
		}
	}

	return records, nil
}
