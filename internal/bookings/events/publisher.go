package events

import (
	"context"
	"time"

	"stayhub/pkg/kafka"
	"stayhub/pkg/model"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingUpdated   = "booking.updated"
	TypeBookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload published after a booking write commits.
// Peer instances consume it to invalidate their local caches; Origin lets
// the publishing instance skip its own events.
type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"booking_id"`
	UserID       string    `json:"user_id"`
	RoomID       string    `json:"room_id"`
	CheckIn      string    `json:"check_in"`
	CheckOut     string    `json:"check_out"`
	PrevCheckIn  string    `json:"prev_check_in,omitempty"`
	PrevCheckOut string    `json:"prev_check_out,omitempty"`
	Status       string    `json:"status"`
	Origin       string    `json:"origin"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *model.Booking, origin string) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		CheckIn:    b.CheckIn.Format(model.DateLayout),
		CheckOut:   b.CheckOut.Format(model.DateLayout),
		Status:     string(b.Status),
		Origin:     origin,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher emits booking events. Publishing is best-effort: the write has
// already committed, so failures are logged by callers rather than rolled
// back.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
	}
}

// Publish keys the message by room so events for one room stay ordered
// across partitions.
func (p *kafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	msg := kafka.NewMessage().
		WithKey(event.RoomID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(p.source).
		Build()

	return p.producer.Publish(ctx, msg)
}

// NoopPublisher drops events. Used when eventing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error {
	return nil
}
