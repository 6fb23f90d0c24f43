package events

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	bookingscache "stayhub/internal/bookings/cache"
	"stayhub/pkg/config"
	"stayhub/pkg/kafka"
	"stayhub/pkg/logger"
	"stayhub/pkg/metrics"
	"stayhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCaches(t *testing.T) *bookingscache.Caches {
	t.Helper()
	caches := bookingscache.New(&config.Config{
		BookingCacheTTL:       time.Minute,
		BookingCacheSize:      100,
		UserBookingsCacheTTL:  time.Minute,
		UserBookingsCacheSize: 100,
		AvailabilityCacheTTL:  time.Minute,
		AvailabilityCacheSize: 100,
		CacheSweepInterval:    time.Hour,
	}, metrics.NewRegistry())
	t.Cleanup(caches.Stop)
	return caches
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.TEXT,
		Output: io.Discard,
	})
}

func eventMessage(t *testing.T, event BookingEvent) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{
		Key:     event.RoomID,
		Value:   payload,
		Headers: map[string]string{},
	}
}

func seed(caches *bookingscache.Caches) (string, string, bookingscache.AvailabilityKey) {
	checkIn, _ := time.ParseInLocation(model.DateLayout, "2024-01-10", time.UTC)
	checkOut, _ := time.ParseInLocation(model.DateLayout, "2024-01-12", time.UTC)

	caches.PutBooking(model.Booking{ID: "b1", UserID: "u1", RoomID: "r1"})
	caches.PutUserBookings("u1", []model.Booking{{ID: "b1"}})
	key := bookingscache.NewAvailabilityKey("r1", checkIn, checkOut)
	caches.PutUnavailable(key)
	return "b1", "u1", key
}

func TestHandleInvalidatesOnPeerEvent(t *testing.T) {
	caches := testCaches(t)
	bookingID, userID, key := seed(caches)

	inv := NewInvalidator(caches, "this-instance", testLogger())
	err := inv.Handle(context.Background(), eventMessage(t, BookingEvent{
		Type:      TypeBookingCancelled,
		BookingID: bookingID,
		UserID:    userID,
		RoomID:    "r1",
		Origin:    "peer-instance",
	}))
	require.NoError(t, err)

	_, ok := caches.GetBooking(bookingID)
	assert.False(t, ok)
	_, ok = caches.GetUserBookings(userID)
	assert.False(t, ok)
	_, cached := caches.GetAvailability(key)
	assert.False(t, cached)
}

func TestHandleSkipsOwnEvents(t *testing.T) {
	caches := testCaches(t)
	bookingID, userID, key := seed(caches)

	inv := NewInvalidator(caches, "this-instance", testLogger())
	err := inv.Handle(context.Background(), eventMessage(t, BookingEvent{
		Type:      TypeBookingCreated,
		BookingID: bookingID,
		UserID:    userID,
		RoomID:    "r1",
		Origin:    "this-instance",
	}))
	require.NoError(t, err)

	_, ok := caches.GetBooking(bookingID)
	assert.True(t, ok, "own events must not invalidate local caches")
	_, cached := caches.GetAvailability(key)
	assert.True(t, cached)
}

func TestHandleToleratesMalformedPayload(t *testing.T) {
	caches := testCaches(t)
	inv := NewInvalidator(caches, "this-instance", testLogger())

	err := inv.Handle(context.Background(), kafka.Message{
		Key:     "r1",
		Value:   []byte("{not json"),
		Headers: map[string]string{},
	})
	assert.NoError(t, err, "malformed events are skipped, not retried forever")
}
