package session

import (
	"errors"

	"github.com/google/uuid"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

// ErrUserMarkerExists is returned when a second user-location marker is created.
var ErrUserMarkerExists = errors.New("user location marker already exists")

// MarkerKind distinguishes the three kinds of markers a session owns.
type MarkerKind string

const (
	MarkerUser    MarkerKind = "user"
	MarkerSearch  MarkerKind = "search"
	MarkerCatalog MarkerKind = "catalog"
)

// Marker is a visual marker placed on the map.
type Marker struct {
	ID       string         `json:"id"`
	Kind     MarkerKind     `json:"kind"`
	Position geo.Coordinate `json:"position"`
	Title    string         `json:"title"`
	PlaceID  string         `json:"place_id,omitempty"`
}

// NewUserMarker creates the user-location marker.
func NewUserMarker(pos geo.Coordinate) Marker {
	return Marker{ID: "user", Kind: MarkerUser, Position: pos, Title: "You are here"}
}

// NewSearchMarker creates a marker for a selected place. Each call yields a
// distinct marker ID.
func NewSearchMarker(p geo.Place) Marker {
	return Marker{
		ID:       "search-" + uuid.NewString(),
		Kind:     MarkerSearch,
		Position: p.Location,
		Title:    p.DisplayName(),
		PlaceID:  p.ID,
	}
}

// NewCatalogMarker creates a marker for a catalog place.
func NewCatalogMarker(p geo.Place) Marker {
	return Marker{
		ID:       "catalog-" + p.ID,
		Kind:     MarkerCatalog,
		Position: p.Location,
		Title:    p.ID,
		PlaceID:  p.ID,
	}
}

// MarkerSet holds every marker of a session. It holds at most one search
// marker and at most one user marker.
type MarkerSet struct {
	user    *Marker
	search  *Marker
	catalog []Marker
	places  map[string]geo.Place
}

// NewMarkerSet creates an empty MarkerSet.
func NewMarkerSet() *MarkerSet {
	return &MarkerSet{places: make(map[string]geo.Place)}
}

// SetUser places the user-location marker. It is created once per session.
func (m *MarkerSet) SetUser(mk Marker) error {
	if m.user != nil {
		return ErrUserMarkerExists
	}
	m.user = &mk
	return nil
}

// User returns the user-location marker, if any.
func (m *MarkerSet) User() (Marker, bool) {
	if m.user == nil {
		return Marker{}, false
	}
	return *m.user, true
}

// ReplaceSearch swaps the search marker and returns the one it replaced.
func (m *MarkerSet) ReplaceSearch(mk Marker) (old *Marker) {
	old = m.search
	m.search = &mk
	return old
}

// ClearSearch removes the search marker and returns it.
func (m *MarkerSet) ClearSearch() (old *Marker) {
	old = m.search
	m.search = nil
	return old
}

// Search returns the current search marker, if any.
func (m *MarkerSet) Search() (Marker, bool) {
	if m.search == nil {
		return Marker{}, false
	}
	return *m.search, true
}

// ReplaceCatalog swaps all catalog markers for the given places and returns
// the markers it removed.
func (m *MarkerSet) ReplaceCatalog(places []geo.Place) (added, removed []Marker) {
	removed = m.catalog
	m.catalog = make([]Marker, 0, len(places))
	m.places = make(map[string]geo.Place, len(places))
	for _, p := range places {
		if _, dup := m.places[p.ID]; dup {
			continue
		}
		m.places[p.ID] = p
		m.catalog = append(m.catalog, NewCatalogMarker(p))
	}
	return append([]Marker(nil), m.catalog...), removed
}

// CatalogPlace looks up the place behind a catalog marker by place ID.
func (m *MarkerSet) CatalogPlace(placeID string) (geo.Place, bool) {
	p, ok := m.places[placeID]
	return p, ok
}

// All returns every live marker: user first, then catalog, then search.
func (m *MarkerSet) All() []Marker {
	out := make([]Marker, 0, len(m.catalog)+2)
	if m.user != nil {
		out = append(out, *m.user)
	}
	out = append(out, m.catalog...)
	if m.search != nil {
		out = append(out, *m.search)
	}
	return out
}
