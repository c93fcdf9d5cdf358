package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shrutiikadam/UrbanDepot1/internal/domain/booking"
)

// HandoffPublisher is a booking.Navigator that hands drafts to the
// reservation flow through Kafka.
type HandoffPublisher struct {
	producer *Producer
	topic    string
	logger   *zap.Logger
}

// NewHandoffPublisher creates a HandoffPublisher. An empty topic selects
// TopicReservationEvents.
func NewHandoffPublisher(producer *Producer, topic string, logger *zap.Logger) *HandoffPublisher {
	if topic == "" {
		topic = TopicReservationEvents
	}
	return &HandoffPublisher{producer: producer, topic: topic, logger: logger}
}

// NavigateToReservation publishes a ReservationHandoffRequested event keyed
// by the envelope ID.
func (h *HandoffPublisher) NavigateToReservation(ctx context.Context, draft bookingDomain.ReservationDraft) error {
	evt := ReservationHandoffRequestedEvent{
		PlaceName:  draft.PlaceName,
		Address:    draft.Address,
		Latitude:   draft.Location.Lat,
		Longitude:  draft.Location.Lng,
		OccurredAt: time.Now().UTC(),
	}
	cloudEvent, err := NewCloudEvent(Source, ReservationHandoffRequested, evt)
	if err != nil {
		h.logger.Error("failed to create cloud event",
			zap.String("event_type", ReservationHandoffRequested),
			zap.Error(err),
		)
		return err
	}

	if err := h.producer.PublishEvent(ctx, h.topic, cloudEvent.ID, cloudEvent); err != nil {
		h.logger.Error("failed to publish event",
			zap.String("topic", h.topic),
			zap.String("handoff_id", cloudEvent.ID),
			zap.String("event_type", ReservationHandoffRequested),
			zap.Error(err),
		)
		return err
	}
	h.logger.Debug("reservation handoff published", zap.String("handoff_id", cloudEvent.ID))
	return nil
}
