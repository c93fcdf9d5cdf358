// Package geo models coordinates, places and routes returned by map providers.
package geo

import (
	"fmt"
	"math"

	"github.com/mmcloughlin/geohash"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain"
)

const (
	// DefaultZoom is the continental zoom level used before the user is located.
	DefaultZoom = 5

	// FocusZoom is the zoom level applied when a place is selected.
	FocusZoom = 15

	earthRadiusM = 6_371_000.0
)

// DefaultCenter is the initial viewport center (geographic center of India).
var DefaultCenter = Coordinate{Lat: 20.5937, Lng: 78.9629}

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies within WGS84 bounds.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Geohash returns the geohash cell of the coordinate at the given precision.
func (c Coordinate) Geohash(precision uint) string {
	return geohash.EncodeWithPrecision(c.Lat, c.Lng, precision)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// DistanceMeters returns the great-circle distance to other.
func (c Coordinate) DistanceMeters(other Coordinate) float64 {
	const deg2rad = math.Pi / 180.0

	dLat := (other.Lat - c.Lat) * deg2rad
	dLng := (other.Lng - c.Lng) * deg2rad
	lat1 := c.Lat * deg2rad
	lat2 := other.Lat * deg2rad

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)
	a := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	return earthRadiusM * 2 * math.Asin(math.Sqrt(a))
}

// BoundingBox returns the south-west and north-east corners of the box that
// encloses a circle of radiusM around c, clamped to WGS84 bounds.
func (c Coordinate) BoundingBox(radiusM float64) (sw, ne Coordinate) {
	const rad2deg = 180.0 / math.Pi

	dLat := radiusM / earthRadiusM * rad2deg
	cosLat := math.Cos(c.Lat / rad2deg)
	dLng := 180.0
	if cosLat > 1e-9 {
		dLng = math.Min(180, dLat/cosLat)
	}

	sw = Coordinate{Lat: math.Max(-90, c.Lat-dLat), Lng: math.Max(-180, c.Lng-dLng)}
	ne = Coordinate{Lat: math.Min(90, c.Lat+dLat), Lng: math.Min(180, c.Lng+dLng)}
	return sw, ne
}

// PlaceSource tells where a Place came from, which decides how it is compared.
type PlaceSource int

const (
	// SourceSearch marks places returned by a free-text provider search.
	SourceSearch PlaceSource = iota
	// SourceCatalog marks places loaded from the parking catalog.
	SourceCatalog
)

func (s PlaceSource) String() string {
	if s == SourceCatalog {
		return "catalog"
	}
	return "search"
}

// Place is an immutable point of interest.
type Place struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Location Coordinate  `json:"location"`
	Source   PlaceSource `json:"source"`
}

// NewCatalogPlace builds a catalog place. Catalog places are identified by ID.
func NewCatalogPlace(id, name string, lat, lng float64) (Place, error) {
	if id == "" {
		return Place{}, domain.NewValidationError("catalog place ID is required")
	}
	loc := Coordinate{Lat: lat, Lng: lng}
	if !loc.Valid() {
		return Place{}, domain.NewValidationError(fmt.Sprintf("invalid coordinate for place %s: %s", id, loc))
	}
	return Place{ID: id, Name: name, Location: loc, Source: SourceCatalog}, nil
}

// NewSearchPlace builds a place returned by a provider search. The provider
// reference may be empty; search places are identified by their coordinates.
func NewSearchPlace(providerRef, name string, lat, lng float64) Place {
	return Place{
		ID:       providerRef,
		Name:     name,
		Location: Coordinate{Lat: lat, Lng: lng},
		Source:   SourceSearch,
	}
}

// HasGeometry reports whether the place carries a usable location.
func (p Place) HasGeometry() bool {
	return p.Location.Valid() && !(p.Location.Lat == 0 && p.Location.Lng == 0)
}

// DisplayName returns the name shown in the popup, falling back to the ID.
func (p Place) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// SameAs compares catalog places by ID and search places by coordinate pair.
func (p Place) SameAs(other Place) bool {
	if p.Source != other.Source {
		return false
	}
	if p.Source == SourceCatalog {
		return p.ID == other.ID
	}
	return p.Location == other.Location
}
