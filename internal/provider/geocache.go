package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

const (
	// geocodeCacheTTL is how long a resolved address stays cached by default.
	geocodeCacheTTL = 10 * time.Minute

	// geocodeHashPrecision controls the spatial resolution of the cache key.
	// Precision 9 is a cell of roughly 5m x 5m, finer than a street address.
	geocodeHashPrecision = 9

	// sharedLookupTimeout bounds an upstream lookup shared by several callers.
	sharedLookupTimeout = 30 * time.Second
)

// CachedGeocoder wraps another Geocoder with an in-memory, geohash-keyed
// cache. Concurrent lookups for the same cell share one upstream call, which
// is detached from any single caller's context; each caller stops waiting
// when its own context is done. AddressNotFound results and errors are never
// cached.
type CachedGeocoder struct {
	inner Geocoder
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cachedAddress
	group   singleflight.Group
}

type cachedAddress struct {
	address   string
	expiresAt time.Time
}

// NewCachedGeocoder wraps inner. A ttl <= 0 selects the default TTL.
func NewCachedGeocoder(inner Geocoder, ttl time.Duration) *CachedGeocoder {
	if ttl <= 0 {
		ttl = geocodeCacheTTL
	}
	return &CachedGeocoder{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedAddress),
	}
}

// Geocode satisfies the Geocoder interface.
func (c *CachedGeocoder) Geocode(ctx context.Context, coord geo.Coordinate) (string, error) {
	key := coord.Geohash(geocodeHashPrecision)

	if addr, ok := c.lookup(key); ok {
		return addr, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		addr, err := c.inner.Geocode(lookupCtx, coord)
		if err != nil {
			return "", err
		}
		if addr != AddressNotFound {
			c.store(key, addr)
		}
		return addr, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len returns the number of live cache entries.
func (c *CachedGeocoder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *CachedGeocoder) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.address, true
}

func (c *CachedGeocoder) store(key, addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedAddress{address: addr, expiresAt: c.now().Add(c.ttl)}
}
