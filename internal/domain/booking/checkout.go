package booking

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain"
)

const (
	// CurrencyINR is the only currency the payment step charges in.
	CurrencyINR = "INR"

	// DefaultPhoneRegion is used to parse contact numbers without a country code.
	DefaultPhoneRegion = "IN"

	merchantName       = "UrbanDepot"
	paymentDescription = "Parking Reservation Payment"
)

// Prefill holds the customer details shown pre-filled by the payment gateway.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// CheckoutRequest is what the external payment gateway is invoked with.
type CheckoutRequest struct {
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
}

// NewCheckoutRequest builds the payment request for a reservation and its fare.
func NewCheckoutRequest(r Reservation, fare FareBreakdown) (CheckoutRequest, error) {
	if fare.TotalAmount <= 0 {
		return CheckoutRequest{}, domain.NewValidationError("amount must be positive")
	}
	contact, err := NormalizeContact(r.ContactNumber)
	if err != nil {
		return CheckoutRequest{}, err
	}
	return CheckoutRequest{
		Amount:      fare.TotalAmount,
		Currency:    CurrencyINR,
		Name:        merchantName,
		Description: paymentDescription,
		Prefill: Prefill{
			Name:    r.Name,
			Email:   r.Email,
			Contact: contact,
		},
	}, nil
}

// NormalizeContact parses a phone number and formats it as E.164.
func NormalizeContact(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return "", domain.NewValidationError(fmt.Sprintf("invalid contact number %q: %v", raw, err))
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", domain.NewValidationError(fmt.Sprintf("invalid contact number %q", raw))
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
