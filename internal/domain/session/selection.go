package session

import "github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"

// SelectionState is the place currently highlighted on the map and its
// resolved street address. Values are immutable; every change produces a new
// value with a higher Revision, which is how late geocode responses are
// matched against the selection they were issued for.
type SelectionState struct {
	Place          *geo.Place `json:"place,omitempty"`
	Address        string     `json:"address"`
	AddressPending bool       `json:"address_pending"`
	PopupVisible   bool       `json:"popup_visible"`
	Revision       uint64     `json:"revision"`
}

// HasPlace returns true if a place is selected.
func (s SelectionState) HasPlace() bool {
	return s.Place != nil
}

// Select returns a new selection for p. The previous address is kept as a
// placeholder until the geocode for p resolves.
func (s SelectionState) Select(p geo.Place) SelectionState {
	place := p
	return SelectionState{
		Place:          &place,
		Address:        s.Address,
		AddressPending: true,
		PopupVisible:   true,
		Revision:       s.Revision + 1,
	}
}

// ResolveAddress applies an address for the selection instance identified by
// revision. It returns false and leaves s untouched if the selection has
// moved on since the geocode was issued.
func (s SelectionState) ResolveAddress(revision uint64, address string) (SelectionState, bool) {
	if revision != s.Revision || !s.HasPlace() {
		return s, false
	}
	next := s
	next.Address = address
	next.AddressPending = false
	return next, true
}

// Clear returns an empty selection with the popup hidden.
func (s SelectionState) Clear() SelectionState {
	return SelectionState{Revision: s.Revision + 1}
}
