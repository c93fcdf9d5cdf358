// Package booking covers everything after a place is picked on the map: the
// reservation draft handed to the reservation form, the reservation payload
// the form produces, fare pricing and the payment checkout request.
package booking

import (
	"context"
	"errors"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/session"
)

// ErrHandoffRefused is returned when booking is confirmed without a selected place.
var ErrHandoffRefused = errors.New("handoff refused: no place selected")

// ReservationDraft is the immutable payload carried into the reservation form.
// Two drafts built from the same selection are equal.
type ReservationDraft struct {
	Address   string         `json:"address"`
	PlaceName string         `json:"place"`
	Location  geo.Coordinate `json:"location"`
}

// NewReservationDraft builds a draft from the current selection.
func NewReservationDraft(sel session.SelectionState) (ReservationDraft, error) {
	if !sel.HasPlace() {
		return ReservationDraft{}, ErrHandoffRefused
	}
	return ReservationDraft{
		Address:   sel.Address,
		PlaceName: sel.Place.DisplayName(),
		Location:  sel.Place.Location,
	}, nil
}

// Prefill returns the reservation fields the form starts out with.
func (d ReservationDraft) Prefill() Reservation {
	return Reservation{
		Address: d.Address,
		Place:   d.PlaceName,
	}
}

// Navigator hands a draft over to the reservation flow. The handoff is one
// way: nothing is read back.
type Navigator interface {
	NavigateToReservation(ctx context.Context, draft ReservationDraft) error
}
