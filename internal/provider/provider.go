// Package provider is the typed boundary to external geospatial services:
// place search, reverse geocoding, directions and the host's location.
// Implementations hold no selection state.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

// AddressNotFound is returned by Geocode in place of an error when the
// provider cannot resolve a coordinate.
const AddressNotFound = "Address not found"

// DefaultSearchRadiusM is the bias radius used for nearby searches.
const DefaultSearchRadiusM = 500

var (
	// ErrProviderUnavailable means the provider client could not be initialized.
	ErrProviderUnavailable = errors.New("geospatial provider unavailable")

	// ErrLocationUnavailable is the parent of every user-location failure.
	ErrLocationUnavailable = errors.New("user location unavailable")

	// ErrLocationUnsupported means the host cannot provide a location at all.
	ErrLocationUnsupported = fmt.Errorf("%w: geolocation is not supported", ErrLocationUnavailable)

	// ErrLocationDenied means the user refused to share their location.
	ErrLocationDenied = fmt.Errorf("%w: permission denied", ErrLocationUnavailable)

	// ErrProviderTimeout means a provider call exceeded its deadline.
	ErrProviderTimeout = errors.New("geospatial provider timed out")
)

// RouteUnavailableError is returned when the directions provider reports a
// non-OK status.
type RouteUnavailableError struct {
	Status string
	Err    error
}

func (e *RouteUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("route unavailable: %s: %v", e.Status, e.Err)
	}
	return "route unavailable: " + e.Status
}

func (e *RouteUnavailableError) Unwrap() error {
	return e.Err
}

// StatusError is returned when a provider answers with an unexpected status.
type StatusError struct {
	Service string
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider: %s: status %s: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("provider: %s: status %s", e.Service, e.Status)
}

// SearchRequest is a free-text place search, optionally biased to a point.
type SearchRequest struct {
	Query   string
	Near    *geo.Coordinate
	RadiusM int
}

// Searcher finds places by free text. No match yields an empty slice and a
// nil error.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]geo.Place, error)
}

// Geocoder resolves a coordinate to a street address. A provider that cannot
// resolve the coordinate returns AddressNotFound and a nil error.
type Geocoder interface {
	Geocode(ctx context.Context, c geo.Coordinate) (string, error)
}

// Router computes directions. A non-OK provider status yields a
// *RouteUnavailableError.
type Router interface {
	Route(ctx context.Context, q geo.DirectionsQuery) (*geo.Directions, error)
}

// Locator reports the user's current location.
type Locator interface {
	CurrentLocation(ctx context.Context) (geo.Coordinate, error)
}

// Adapter is the full capability set a map session needs.
type Adapter interface {
	Searcher
	Geocoder
	Router
	Locator
}

// RouteStatus extracts the provider status carried by a route failure.
func RouteStatus(err error) string {
	var rue *RouteUnavailableError
	switch {
	case errors.As(err, &rue):
		return rue.Status
	case errors.Is(err, ErrProviderTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrProviderUnavailable):
		return "PROVIDER_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}
