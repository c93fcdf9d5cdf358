package events

import (
	"context"
	"encoding/json"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	bookingDomain "github.com/shrutiikadam/UrbanDepot1/internal/domain/booking"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

// HandoffHandler receives drafts handed to the reservation flow together with
// the ID of the event that carried them.
type HandoffHandler func(ctx context.Context, handoffID string, draft bookingDomain.ReservationDraft) error

// HandoffConsumer reads reservation handoffs back off Kafka and passes them
// to a handler. It is the receiving end of HandoffPublisher.
type HandoffConsumer struct {
	reader  *kafkago.Reader
	handler HandoffHandler
	logger  *zap.Logger
}

// NewHandoffConsumer creates a consumer in group groupID.
func NewHandoffConsumer(brokers []string, groupID, topic string, handler HandoffHandler, logger *zap.Logger) *HandoffConsumer {
	if topic == "" {
		topic = TopicReservationEvents
	}
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &HandoffConsumer{reader: reader, handler: handler, logger: logger}
}

// Start consumes handoffs. It blocks until ctx is cancelled.
func (c *HandoffConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return err
		}
		if err := c.handleMessage(ctx, msg); err != nil {
			c.logger.Error("handoff handler failed, offset left uncommitted",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn("failed to commit handoff offset", zap.Error(err))
		}
	}
}

// Close closes the underlying reader.
func (c *HandoffConsumer) Close() error {
	return c.reader.Close()
}

func (c *HandoffConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from reservation topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case ReservationHandoffRequested:
		var evt ReservationHandoffRequestedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse ReservationHandoffRequestedEvent data", zap.Error(err))
			return nil
		}
		c.logger.Info("processing reservation handoff",
			zap.String("handoff_id", cloudEvent.ID),
			zap.String("place", evt.PlaceName),
		)
		return c.handler(ctx, cloudEvent.ID, bookingDomain.ReservationDraft{
			Address:   evt.Address,
			PlaceName: evt.PlaceName,
			Location:  geo.Coordinate{Lat: evt.Latitude, Lng: evt.Longitude},
		})
	default:
		c.logger.Debug("ignoring unhandled reservation event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}
