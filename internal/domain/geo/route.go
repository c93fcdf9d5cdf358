package geo

import (
	"fmt"
	"strings"
)

// TravelMode selects how a route is computed.
type TravelMode string

const (
	TravelModeDriving   TravelMode = "DRIVING"
	TravelModeWalking   TravelMode = "WALKING"
	TravelModeBicycling TravelMode = "BICYCLING"
	TravelModeTransit   TravelMode = "TRANSIT"
)

// IsValid returns true if the travel mode is recognized.
func (m TravelMode) IsValid() bool {
	switch m {
	case TravelModeDriving, TravelModeWalking, TravelModeBicycling, TravelModeTransit:
		return true
	}
	return false
}

func (m TravelMode) String() string {
	return string(m)
}

// ParseTravelMode converts a case-insensitive string to a TravelMode.
// An empty string yields TravelModeDriving.
func ParseTravelMode(s string) (TravelMode, error) {
	if s == "" {
		return TravelModeDriving, nil
	}
	mode := TravelMode(strings.ToUpper(strings.TrimSpace(s)))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid travel mode: %s", s)
	}
	return mode, nil
}

// DirectionsQuery asks for a route between two coordinates.
type DirectionsQuery struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`
	Mode        TravelMode `json:"travel_mode"`
}

// Step is a single turn-by-turn instruction.
type Step struct {
	Instruction     string `json:"instruction"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	Maneuver        string `json:"maneuver,omitempty"`
}

// Leg is the part of a route between two waypoints.
type Leg struct {
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	StartAddress    string `json:"start_address,omitempty"`
	EndAddress      string `json:"end_address,omitempty"`
	Steps           []Step `json:"steps"`
}

// Route is one alternative returned by a directions provider.
type Route struct {
	Summary  string `json:"summary"`
	Polyline string `json:"polyline"`
	Legs     []Leg  `json:"legs"`
}

// Directions is a provider's answer to a DirectionsQuery.
type Directions struct {
	Query  DirectionsQuery `json:"query"`
	Routes []Route         `json:"routes"`
}

// StepInstructions returns the instructions of the first leg of the first
// route, in order. Other routes and legs are never consulted.
func (d *Directions) StepInstructions() []string {
	if d == nil || len(d.Routes) == 0 || len(d.Routes[0].Legs) == 0 {
		return nil
	}
	steps := d.Routes[0].Legs[0].Steps
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Instruction
	}
	return out
}
