// Package events publishes booking lifecycle events to the event
// stream. Publishing is best-effort: a failed publish is logged and
// never rolls back the committed write.
package events

import (
	"context"
	"time"

	"github.com/ekpono/booking-platform/pkg/kafka"
	kafka_config "github.com/ekpono/booking-platform/pkg/kafka/config"
	"github.com/ekpono/booking-platform/pkg/logger"
	"github.com/ekpono/booking-platform/pkg/model"
)

const (
	TypeBookingCreated = "booking.created"
	TypeBookingUpdated = "booking.updated"
	TypeBookingDeleted = "booking.deleted"

	schemaVersion = "1"
	source        = "booking-platform"
)

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingUpdated(ctx context.Context, booking *model.Booking)
	BookingDeleted(ctx context.Context, id, userID string)
	Close() error
}

// payload is the event body shared by all three event types.
type payload struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	ClientID  string     `json:"client_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(cfg *kafka_config.Config, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}
	return &kafkaPublisher{producer: producer, log: log}, nil
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingCreated, bookingPayload(booking))
}

func (p *kafkaPublisher) BookingUpdated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingUpdated, bookingPayload(booking))
}

func (p *kafkaPublisher) BookingDeleted(ctx context.Context, id, userID string) {
	p.publish(ctx, TypeBookingDeleted, payload{ID: id, UserID: userID})
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, body payload) {
	msg, err := kafka.NewMessage().
		WithKey(body.UserID).
		WithValue(body).
		WithEventID("").
		WithEventType(eventType).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "event_type", eventType, "error", err)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", body.ID,
			"user_id", body.UserID,
			"error", err,
		)
	}
}

func bookingPayload(b *model.Booking) payload {
	start := b.StartTime
	end := b.EndTime
	return payload{
		ID:        b.ID,
		UserID:    b.UserID,
		ClientID:  b.ClientID,
		Title:     b.Title,
		StartTime: &start,
		EndTime:   &end,
	}
}

// NoopPublisher is used when the event stream is disabled.
type NoopPublisher struct{}

func (NoopPublisher) BookingCreated(context.Context, *model.Booking) {}
func (NoopPublisher) BookingUpdated(context.Context, *model.Booking) {}
func (NoopPublisher) BookingDeleted(context.Context, string, string) {}
func (NoopPublisher) Close() error                                   { return nil }
