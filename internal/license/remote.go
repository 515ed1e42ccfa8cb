package license

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"doimeta/internal/logger"
)

const listKey = "licenses"

// RemoteRegistry serves a license list published at a URL. The list is
// fetched lazily and cached for ttl. A ttl of zero caches it for the life of
// the process.
type RemoteRegistry struct {
	url     string
	fetcher *Fetcher
	cache   *gocache.Cache
	logger  *logger.Logger
}

// NewRemoteRegistry creates a registry backed by url.
func NewRemoteRegistry(url string, fetcher *Fetcher, ttl time.Duration, log *logger.Logger) *RemoteRegistry {
	if log == nil {
		log = logger.Discard()
	}

	cleanup := 2 * ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}

	return &RemoteRegistry{
		url:     url,
		fetcher: fetcher,
		cache:   gocache.New(ttl, cleanup),
		logger:  log.With("registry", url),
	}
}

// Lookup implements Registry.
func (r *RemoteRegistry) Lookup(ctx context.Context, id string) (License, bool, error) {
	reg, err := r.load(ctx)
	if err != nil {
		return License{}, false, err
	}

	return reg.Lookup(ctx, id)
}

// List implements Registry.
func (r *RemoteRegistry) List(ctx context.Context) ([]License, error) {
	reg, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	return reg.List(ctx)
}

// Invalidate drops the cached list so the next lookup refetches it.
func (r *RemoteRegistry) Invalidate() {
	r.cache.Delete(listKey)
}

func (r *RemoteRegistry) load(ctx context.Context) (*StaticRegistry, error) {
	if v, found := r.cache.Get(listKey); found {
		if reg, ok := v.(*StaticRegistry); ok {
			r.logger.Debug("license list cache hit")
			return reg, nil
		}
	}

	body, err := r.fetcher.Fetch(ctx, r.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch license list: %w", err)
	}

	licenses, err := Decode(body)
	if err != nil {
		return nil, err
	}

	reg := NewStaticRegistry(licenses...)
	r.cache.SetDefault(listKey, reg)
	r.logger.Debug("license list fetched", "count", reg.Len())

	return reg, nil
}
