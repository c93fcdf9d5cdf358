// Package events publishes and consumes the service's Kafka events. Every
// message value is a CloudEvents 1.0 JSON envelope.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// Source identifies this service in emitted events.
	Source = "urbandepot-parkfinder"

	// TopicReservationEvents carries reservation handoffs.
	TopicReservationEvents = "reservation.events"

	// ReservationHandoffRequested is emitted when a user confirms a place for booking.
	ReservationHandoffRequested = "reservation.handoff.requested"

	cloudEventsSpecVersion = "1.0"
)

// CloudEvent is the envelope every event is wrapped in.
type CloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// NewCloudEvent wraps data in a new envelope.
func NewCloudEvent(source, eventType string, data any) (CloudEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return CloudEvent{
		SpecVersion:     cloudEventsSpecVersion,
		ID:              uuid.NewString(),
		Source:          source,
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            raw,
	}, nil
}

// ParseData decodes the event payload into v.
func (e CloudEvent) ParseData(v any) error {
	return json.Unmarshal(e.Data, v)
}

// ReservationHandoffRequestedEvent is the payload of ReservationHandoffRequested.
// The envelope ID identifies the handoff.
type ReservationHandoffRequestedEvent struct {
	PlaceName  string    `json:"place"`
	Address    string    `json:"address"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	OccurredAt time.Time `json:"occurred_at"`
}
