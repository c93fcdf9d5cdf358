package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	bookingDomain "github.com/shrutiikadam/UrbanDepot1/internal/domain/booking"
)

// PaymentGateway is the external payment collaborator. It returns the
// gateway's payment identifier.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req bookingDomain.CheckoutRequest) (string, error)
}

// PaymentResult is the outcome of a successful payment.
type PaymentResult struct {
	PaymentID string                        `json:"payment_id"`
	Fare      bookingDomain.FareBreakdown   `json:"fare"`
	Checkout  bookingDomain.CheckoutRequest `json:"checkout"`
}

// FareService prices reservations and prepares their payment.
type FareService struct {
	pricing bookingDomain.PricingStrategy
	logger  *zap.Logger
}

// NewFareService creates a new FareService.
func NewFareService(pricing bookingDomain.PricingStrategy, logger *zap.Logger) *FareService {
	return &FareService{
		pricing: pricing,
		logger:  logger,
	}
}

// Quote computes the fare for a reservation window.
func (s *FareService) Quote(r bookingDomain.Reservation) (bookingDomain.FareBreakdown, error) {
	fare, err := s.pricing.Calculate(r.FareParams())
	if err != nil {
		return bookingDomain.FareBreakdown{}, err
	}
	s.logger.Debug("fare quoted",
		zap.String("vehicle_type", string(r.VehicleType)),
		zap.Float64("billable_hours", fare.BillableHours),
		zap.Int64("total_amount", fare.TotalAmount),
	)
	return fare, nil
}

// Checkout validates a reservation, prices it and builds the payment request.
func (s *FareService) Checkout(r bookingDomain.Reservation) (bookingDomain.CheckoutRequest, bookingDomain.FareBreakdown, error) {
	if err := r.Validate(); err != nil {
		return bookingDomain.CheckoutRequest{}, bookingDomain.FareBreakdown{}, err
	}
	fare, err := s.Quote(r)
	if err != nil {
		return bookingDomain.CheckoutRequest{}, bookingDomain.FareBreakdown{}, err
	}
	req, err := bookingDomain.NewCheckoutRequest(r, fare)
	if err != nil {
		return bookingDomain.CheckoutRequest{}, bookingDomain.FareBreakdown{}, err
	}
	return req, fare, nil
}

// Pay runs Checkout and invokes the gateway. Any failure aborts the payment.
func (s *FareService) Pay(ctx context.Context, r bookingDomain.Reservation, gateway PaymentGateway) (*PaymentResult, error) {
	req, fare, err := s.Checkout(r)
	if err != nil {
		return nil, err
	}
	paymentID, err := gateway.CreatePayment(ctx, req)
	if err != nil {
		s.logger.Error("payment failed", zap.Int64("amount", req.Amount), zap.Error(err))
		return nil, fmt.Errorf("payment failed: %w", err)
	}
	s.logger.Info("payment created",
		zap.String("payment_id", paymentID),
		zap.String("amount", bookingDomain.FormatSubunits(req.Amount)),
	)
	return &PaymentResult{PaymentID: paymentID, Fare: fare, Checkout: req}, nil
}
