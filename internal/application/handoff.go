package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	bookingDomain "github.com/shrutiikadam/UrbanDepot1/internal/domain/booking"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/session"
)

// HandoffService turns a confirmed selection into a reservation draft and
// hands it to the reservation flow.
type HandoffService struct {
	navigator bookingDomain.Navigator
	logger    *zap.Logger
}

// NewHandoffService creates a new HandoffService.
func NewHandoffService(navigator bookingDomain.Navigator, logger *zap.Logger) *HandoffService {
	return &HandoffService{
		navigator: navigator,
		logger:    logger,
	}
}

// ConfirmBooking builds a draft from sel and navigates to the reservation
// flow. Without a selected place it fails with ErrHandoffRefused and nothing
// is dispatched.
func (s *HandoffService) ConfirmBooking(ctx context.Context, sel session.SelectionState) (bookingDomain.ReservationDraft, error) {
	draft, err := bookingDomain.NewReservationDraft(sel)
	if err != nil {
		if errors.Is(err, bookingDomain.ErrHandoffRefused) {
			s.logger.Info("booking handoff refused: no place selected")
		}
		return bookingDomain.ReservationDraft{}, err
	}

	if err := s.navigator.NavigateToReservation(ctx, draft); err != nil {
		s.logger.Error("booking handoff failed",
			zap.String("place", draft.PlaceName),
			zap.Error(err),
		)
		return bookingDomain.ReservationDraft{}, fmt.Errorf("failed to hand off reservation: %w", err)
	}

	s.logger.Info("booking handed off",
		zap.String("place", draft.PlaceName),
	)
	return draft, nil
}

// LogNavigator is an in-process Navigator that only records the handoff. It
// is used when no message broker is configured.
type LogNavigator struct {
	logger *zap.Logger
}

// NewLogNavigator creates a new LogNavigator.
func NewLogNavigator(logger *zap.Logger) *LogNavigator {
	return &LogNavigator{logger: logger}
}

// NavigateToReservation logs the draft.
func (n *LogNavigator) NavigateToReservation(_ context.Context, draft bookingDomain.ReservationDraft) error {
	n.logger.Info("navigate to reservation",
		zap.String("place", draft.PlaceName),
		zap.String("address", draft.Address),
		zap.String("location", draft.Location.String()),
	)
	return nil
}
