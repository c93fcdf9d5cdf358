package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/session"
	"github.com/shrutiikadam/UrbanDepot1/internal/provider"
)

// MsgDirectionsNoLocation is the advisory raised when directions are
// requested before the user location is known.
const MsgDirectionsNoLocation = "Your location is needed to show directions."

// ErrNoSelection is returned when directions are requested with nothing selected.
var ErrNoSelection = errors.New("no place selected")

// DirectionsOrchestrator requests routes from the user's location to the
// selected place. Only the most recently issued request may update the
// rendered route. It shares the lock of the session it belongs to.
type DirectionsOrchestrator struct {
	s      *MapSession
	seq    uint64
	latest *geo.Directions
	steps  []string
}

// Request asks for directions to the current selection. An empty mode uses
// the session's travel mode.
func (d *DirectionsOrchestrator) Request(ctx context.Context, mode geo.TravelMode) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if err := d.s.acceptLocked(); err != nil {
		return err
	}
	if mode == "" {
		mode = d.s.mode
	}
	if !mode.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid travel mode: %s", mode))
	}
	return d.requestLocked(ctx, mode)
}

func (d *DirectionsOrchestrator) requestLocked(ctx context.Context, mode geo.TravelMode) error {
	s := d.s
	if !s.selection.HasPlace() {
		return ErrNoSelection
	}
	if s.user == nil {
		s.logger.Info("directions skipped: user location unknown")
		s.view.Advisory(MsgDirectionsNoLocation)
		return nil
	}

	d.seq++
	seq := d.seq
	q := geo.DirectionsQuery{
		Origin:      *s.user,
		Destination: s.selection.Place.Location,
		Mode:        mode,
	}
	s.logger.Debug("directions issued",
		zap.Uint64("seq", seq),
		zap.String("mode", mode.String()),
		zap.String("destination", q.Destination.String()),
	)

	s.spawnLocked(ctx, func(callCtx context.Context) {
		dirs, err := s.adapter.Route(callCtx, q)
		d.onRoute(seq, dirs, err)
	})
	return nil
}

func (d *DirectionsOrchestrator) onRoute(seq uint64, dirs *geo.Directions, err error) {
	s := d.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if seq != d.seq {
		s.logger.Debug("stale route dropped", zap.Uint64("seq", seq), zap.Uint64("latest", d.seq))
		return
	}

	if err != nil || dirs == nil {
		status := provider.RouteStatus(err)
		s.logger.Warn("directions request failed", zap.String("status", status), zap.Error(err))
		s.view.Alert(fmt.Sprintf("Directions request failed due to %s", status))
		return
	}

	d.latest = dirs
	d.steps = dirs.StepInstructions()
	s.view.RenderRoute(dirs)

	switch s.state {
	case session.StateSearching:
		s.resumeState = session.StateDirectionsShown
	default:
		if s.state.CanTransitionTo(session.StateDirectionsShown) {
			s.state = session.StateDirectionsShown
		}
	}
}

// invalidateLocked supersedes any in-flight request without touching the
// rendered route.
func (d *DirectionsOrchestrator) invalidateLocked() {
	d.seq++
}

// Steps returns the instructions of the first leg of the first route of the
// latest applied directions, in order.
func (d *DirectionsOrchestrator) Steps() []string {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return append([]string(nil), d.steps...)
}

// Latest returns the latest applied directions, or nil.
func (d *DirectionsOrchestrator) Latest() *geo.Directions {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return d.latest
}
