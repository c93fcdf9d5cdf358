package booking

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain"
)

const (
	// DateLayout is the layout of reservation check-in/check-out dates.
	DateLayout = "2006-01-02"

	// TimeLayout is the layout of reservation check-in/check-out times.
	TimeLayout = "15:04"

	// PlatformFeePct is the platform fee charged on top of the parking fare.
	PlatformFeePct = 0.05

	// subunitsPerUnit converts rupees to paise.
	subunitsPerUnit = 100

	carHourlyRate     int64 = 30
	defaultHourlyRate int64 = 20
)

// ErrInvalidWindow is returned when checkout is not after checkin.
var ErrInvalidWindow = errors.New("invalid reservation window: checkout must be after checkin")

// VehicleType represents the class of vehicle being parked.
type VehicleType string

const (
	VehicleCar   VehicleType = "car"
	VehicleBike  VehicleType = "bike"
	VehicleTruck VehicleType = "truck"
	VehicleSUV   VehicleType = "suv"
)

// IsValid returns true if the vehicle type is one the reservation form offers.
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleCar, VehicleBike, VehicleTruck, VehicleSUV:
		return true
	}
	return false
}

// HourlyRate returns the rate in rupees per hour. Only cars have their own
// rate; every other vehicle type is billed at the bike rate.
func (v VehicleType) HourlyRate() int64 {
	if v == VehicleCar {
		return carHourlyRate
	}
	return defaultHourlyRate
}

// PricingStrategy defines the interface for calculating parking fares.
type PricingStrategy interface {
	// Calculate returns the fare breakdown for the given reservation window.
	Calculate(params FareParams) (FareBreakdown, error)
}

// FareParams holds the inputs for fare calculation, as entered on the
// reservation form.
type FareParams struct {
	CheckinDate  string
	CheckinTime  string
	CheckoutDate string
	CheckoutTime string
	VehicleType  VehicleType
}

// FareBreakdown is the derived fare for a reservation window. Subtotal,
// PlatformFee and TotalAmount are in subunits (paise); HourlyRate is in rupees.
type FareBreakdown struct {
	HourlyRate     int64   `json:"hourly_rate"`
	PlatformFeePct float64 `json:"platform_fee_pct"`
	BillableHours  float64 `json:"billable_hours"`
	Subtotal       float64 `json:"subtotal"`
	PlatformFee    float64 `json:"platform_fee"`
	TotalAmount    int64   `json:"total_amount"`
	Currency       string  `json:"currency"`
}

// ParkingPricingStrategy implements hourly parking pricing.
type ParkingPricingStrategy struct {
	loc *time.Location
}

// NewParkingPricingStrategy creates a ParkingPricingStrategy that interprets
// dates and times in loc. A nil loc means time.Local.
func NewParkingPricingStrategy(loc *time.Location) *ParkingPricingStrategy {
	if loc == nil {
		loc = time.Local
	}
	return &ParkingPricingStrategy{loc: loc}
}

// Calculate computes the fare in paise.
//
// Pricing formula:
//   - Billable hours: checkout minus checkin, fractional hours allowed
//   - Rate: INR 30/h for cars, INR 20/h for everything else
//   - Subtotal: hours * rate * 100
//   - Platform fee: 5% of subtotal
//   - Total: subtotal + fee, rounded to the nearest paisa
func (s *ParkingPricingStrategy) Calculate(params FareParams) (FareBreakdown, error) {
	checkin, err := s.instant(params.CheckinDate, params.CheckinTime)
	if err != nil {
		return FareBreakdown{}, fmt.Errorf("checkin: %w", err)
	}
	checkout, err := s.instant(params.CheckoutDate, params.CheckoutTime)
	if err != nil {
		return FareBreakdown{}, fmt.Errorf("checkout: %w", err)
	}
	if !checkout.After(checkin) {
		return FareBreakdown{}, ErrInvalidWindow
	}

	hours := checkout.Sub(checkin).Hours()
	rate := params.VehicleType.HourlyRate()

	subtotal := hours * float64(rate) * subunitsPerUnit
	fee := subtotal * PlatformFeePct

	return FareBreakdown{
		HourlyRate:     rate,
		PlatformFeePct: PlatformFeePct,
		BillableHours:  hours,
		Subtotal:       subtotal,
		PlatformFee:    fee,
		TotalAmount:    int64(math.Round(subtotal + fee)),
		Currency:       CurrencyINR,
	}, nil
}

func (s *ParkingPricingStrategy) instant(date, clock string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid date %q", date))
	}
	layout := TimeLayout
	if len(clock) == len("15:04:05") {
		layout = "15:04:05"
	}
	c, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid time %q", clock))
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, s.loc), nil
}

// ComputeFare prices a reservation window in the local time zone.
func ComputeFare(checkinDate, checkinTime, checkoutDate, checkoutTime string, vehicleType VehicleType) (FareBreakdown, error) {
	return NewParkingPricingStrategy(time.Local).Calculate(FareParams{
		CheckinDate:  checkinDate,
		CheckinTime:  checkinTime,
		CheckoutDate: checkoutDate,
		CheckoutTime: checkoutTime,
		VehicleType:  vehicleType,
	})
}

// FormatSubunits renders an amount in paise as rupees, e.g. 7875 -> "₹78.75".
func FormatSubunits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, amount/subunitsPerUnit, amount%subunitsPerUnit)
}
