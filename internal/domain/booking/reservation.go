package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Reservation is the payload produced by the reservation form and consumed by
// the fare calculation and payment steps.
type Reservation struct {
	CheckinDate   string      `json:"checkinDate" validate:"required,datetime=2006-01-02"`
	CheckoutDate  string      `json:"checkoutDate" validate:"required,datetime=2006-01-02"`
	CheckinTime   string      `json:"checkinTime" validate:"required,datetime=15:04"`
	CheckoutTime  string      `json:"checkoutTime" validate:"required,datetime=15:04"`
	VehicleType   VehicleType `json:"vehicleType" validate:"required,oneof=car bike truck suv"`
	ContactNumber string      `json:"contactNumber" validate:"required,min=7,max=20"`
	Name          string      `json:"name" validate:"required,max=100"`
	Email         string      `json:"email" validate:"required,email"`
	Address       string      `json:"address"`
	Place         string      `json:"place" validate:"required"`
}

// Validate checks the reservation fields and reports every failing field in
// a single ValidationError.
func (r Reservation) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate reservation: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return domain.NewValidationError(strings.Join(msgs, "; "))
}

// FareParams extracts the fare inputs from the reservation.
func (r Reservation) FareParams() FareParams {
	return FareParams{
		CheckinDate:  r.CheckinDate,
		CheckinTime:  r.CheckinTime,
		CheckoutDate: r.CheckoutDate,
		CheckoutTime: r.CheckoutTime,
		VehicleType:  r.VehicleType,
	}
}
