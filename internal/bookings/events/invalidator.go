package events

import (
	"context"

	bookingscache "stayhub/internal/bookings/cache"
	"stayhub/pkg/kafka"
	"stayhub/pkg/logger"
)

// Invalidator applies peer booking events to the local caches. The
// publishing instance invalidated its own caches synchronously, so events
// carrying our origin are skipped.
type Invalidator struct {
	caches *bookingscache.Caches
	origin string
	log    *logger.Logger
}

func NewInvalidator(caches *bookingscache.Caches, origin string, log *logger.Logger) *Invalidator {
	return &Invalidator{
		caches: caches,
		origin: origin,
		log:    log,
	}
}

// Handle is a kafka.MessageHandler.
func (i *Invalidator) Handle(_ context.Context, msg kafka.Message) error {
	var event BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		i.log.Warn("Failed to decode booking event, skipping",
			"event_id", msg.GetEventID(),
			"error", err,
		)
		return nil
	}

	if event.Origin == i.origin {
		return nil
	}

	i.caches.InvalidateBooking(event.BookingID)
	i.caches.InvalidateUserBookings(event.UserID)
	i.caches.InvalidateRoomAvailability(event.RoomID)

	i.log.Debug("Invalidated caches from peer event",
		"type", event.Type,
		"booking_id", event.BookingID,
		"origin", event.Origin,
	)

	return nil
}
