// Package session models the map session: its state machine, the current
// selection and the markers it owns.
package session

import "fmt"

// SessionState represents where the map session is in its lifecycle.
type SessionState string

const (
	StateIdle            SessionState = "idle"
	StateLocating        SessionState = "locating"
	StateReady           SessionState = "ready"
	StateSearching       SessionState = "searching"
	StateSelected        SessionState = "selected"
	StateDirectionsShown SessionState = "directions_shown"
)

// validTransitions defines the state machine for the map session.
// Searching may also fall back to the state it was entered from when a
// search yields nothing; that edge is covered by the Selected/DirectionsShown
// entries below.
var validTransitions = map[SessionState][]SessionState{
	StateIdle:            {StateLocating},
	StateLocating:        {StateReady, StateSearching, StateSelected},
	StateReady:           {StateSearching, StateSelected},
	StateSearching:       {StateSearching, StateSelected, StateReady, StateDirectionsShown},
	StateSelected:        {StateSelected, StateSearching, StateReady, StateDirectionsShown},
	StateDirectionsShown: {StateDirectionsShown, StateSelected, StateSearching, StateReady},
}

// IsValid returns true if the state is a recognized session state.
func (s SessionState) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this state to the target is allowed.
func (s SessionState) CanTransitionTo(target SessionState) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// HasSelection returns true if a place is highlighted in this state.
func (s SessionState) HasSelection() bool {
	return s == StateSelected || s == StateDirectionsShown
}

// AcceptsInput returns true once the session has been started.
func (s SessionState) AcceptsInput() bool {
	return s != StateIdle
}

// String returns the string representation of the state.
func (s SessionState) String() string {
	return string(s)
}

// ParseSessionState converts a string to a SessionState, returning an error if invalid.
func ParseSessionState(s string) (SessionState, error) {
	state := SessionState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid session state: %s", s)
	}
	return state, nil
}
