package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

// StaticLocator reports a fixed, configured location. A nil location means
// the host has no location capability.
type StaticLocator struct {
	loc *geo.Coordinate
}

// NewStaticLocator creates a Locator returning loc.
func NewStaticLocator(loc *geo.Coordinate) *StaticLocator {
	return &StaticLocator{loc: loc}
}

// CurrentLocation returns the configured location or ErrLocationUnsupported.
func (s *StaticLocator) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, err
	}
	if s.loc == nil {
		return geo.Coordinate{}, ErrLocationUnsupported
	}
	return *s.loc, nil
}

type composite struct {
	Searcher
	Geocoder
	Router
	Locator
}

// Compose assembles an Adapter from independent capabilities, e.g. Nominatim
// search with Google directions.
func Compose(s Searcher, g Geocoder, r Router, l Locator) Adapter {
	return composite{Searcher: s, Geocoder: g, Router: r, Locator: l}
}

// Unavailable returns an Adapter whose search, geocode and route calls fail
// with cause, which should wrap ErrProviderUnavailable. It stands in for a
// client that failed to initialize so that the rest of the session keeps
// working.
func Unavailable(cause error, l Locator) Adapter {
	return unavailable{cause: cause, Locator: l}
}

type unavailable struct {
	cause error
	Locator
}

func (u unavailable) Search(context.Context, SearchRequest) ([]geo.Place, error) {
	return nil, u.cause
}

func (u unavailable) Geocode(context.Context, geo.Coordinate) (string, error) {
	return "", u.cause
}

func (u unavailable) Route(context.Context, geo.DirectionsQuery) (*geo.Directions, error) {
	return nil, u.cause
}

// WithTimeout bounds every call on a by d. A call that runs out of time fails
// with ErrProviderTimeout.
func WithTimeout(a Adapter, d time.Duration) Adapter {
	if d <= 0 {
		return a
	}
	return timeoutAdapter{inner: a, d: d}
}

type timeoutAdapter struct {
	inner Adapter
	d     time.Duration
}

func (t timeoutAdapter) Search(ctx context.Context, req SearchRequest) ([]geo.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	places, err := t.inner.Search(ctx, req)
	return places, timeoutErr(ctx, "search", err)
}

func (t timeoutAdapter) Geocode(ctx context.Context, c geo.Coordinate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	addr, err := t.inner.Geocode(ctx, c)
	return addr, timeoutErr(ctx, "geocode", err)
}

func (t timeoutAdapter) Route(ctx context.Context, q geo.DirectionsQuery) (*geo.Directions, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	dirs, err := t.inner.Route(ctx, q)
	return dirs, timeoutErr(ctx, "route", err)
}

func (t timeoutAdapter) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	loc, err := t.inner.CurrentLocation(ctx)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && err != nil {
		return loc, fmt.Errorf("%w: %w", ErrLocationUnavailable, ErrProviderTimeout)
	}
	return loc, err
}

func timeoutErr(ctx context.Context, op string, err error) error {
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrProviderTimeout)
	}
	return err
}
