package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain"
	bookingDomain "github.com/shrutiikadam/UrbanDepot1/internal/domain/booking"
)

type fakeGateway struct {
	requests []bookingDomain.CheckoutRequest
	err      error
}

func (g *fakeGateway) CreatePayment(_ context.Context, req bookingDomain.CheckoutRequest) (string, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	return "pay_123", nil
}

func testReservation() bookingDomain.Reservation {
	return bookingDomain.Reservation{
		CheckinDate:   "2024-01-01",
		CheckoutDate:  "2024-01-01",
		CheckinTime:   "10:00",
		CheckoutTime:  "12:30",
		VehicleType:   bookingDomain.VehicleCar,
		ContactNumber: "9876543210",
		Name:          "Asha",
		Email:         "asha@example.com",
		Address:       "Hill Road, Bandra West",
		Place:         "Lot A",
	}
}

func newFareService() *FareService {
	return NewFareService(bookingDomain.NewParkingPricingStrategy(time.UTC), zap.NewNop())
}

func TestFareService_Quote(t *testing.T) {
	fare, err := newFareService().Quote(testReservation())
	require.NoError(t, err)
	assert.Equal(t, int64(7875), fare.TotalAmount)
	assert.InDelta(t, 2.5, fare.BillableHours, 1e-9)
}

func TestFareService_QuoteInvalidWindow(t *testing.T) {
	r := testReservation()
	r.CheckoutTime = "09:00"
	_, err := newFareService().Quote(r)
	assert.ErrorIs(t, err, bookingDomain.ErrInvalidWindow)
}

func TestFareService_Pay(t *testing.T) {
	gw := &fakeGateway{}
	res, err := newFareService().Pay(context.Background(), testReservation(), gw)
	require.NoError(t, err)

	assert.Equal(t, "pay_123", res.PaymentID)
	require.Len(t, gw.requests, 1)
	req := gw.requests[0]
	assert.Equal(t, int64(7875), req.Amount)
	assert.Equal(t, bookingDomain.CurrencyINR, req.Currency)
	assert.Equal(t, "+919876543210", req.Prefill.Contact)
	assert.Equal(t, res.Checkout, req)
}

func TestFareService_PayGatewayFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("card declined")}
	_, err := newFareService().Pay(context.Background(), testReservation(), gw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card declined")
}

func TestFareService_PayRejectsInvalidReservation(t *testing.T) {
	gw := &fakeGateway{}
	r := testReservation()
	r.Email = "not-an-email"

	_, err := newFareService().Pay(context.Background(), r, gw)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Empty(t, gw.requests)
}
