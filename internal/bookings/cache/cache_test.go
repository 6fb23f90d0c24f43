package cache

import (
	"testing"
	"time"

	"stayhub/pkg/config"
	"stayhub/pkg/metrics"
	"stayhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		BookingCacheTTL:       time.Minute,
		BookingCacheSize:      100,
		UserBookingsCacheTTL:  time.Minute,
		UserBookingsCacheSize: 100,
		AvailabilityCacheTTL:  time.Minute,
		AvailabilityCacheSize: 100,
		CacheSweepInterval:    time.Hour,
	}
}

func date(s string) time.Time {
	d, err := time.ParseInLocation(model.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAvailabilityKeyNormalizesDates(t *testing.T) {
	a := NewAvailabilityKey("room1", date("2024-01-10"), date("2024-01-12"))
	b := NewAvailabilityKey("room1", date("2024-01-10"), date("2024-01-12"))
	c := NewAvailabilityKey("room1", date("2024-01-11"), date("2024-01-12"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "2024-01-10", a.CheckIn)
}

func TestBookingCacheRoundTrip(t *testing.T) {
	reg := metrics.NewRegistry()
	c := New(testConfig(), reg)
	defer c.Stop()

	_, ok := c.GetBooking("b1")
	assert.False(t, ok)
	assert.Equal(t, int64(1), reg.Value("cache.booking.misses"))

	c.PutBooking(model.Booking{ID: "b1", RoomID: "r1", Status: model.StatusConfirmed})
	got, ok := c.GetBooking("b1")
	require.True(t, ok)
	assert.Equal(t, "r1", got.RoomID)
	assert.Equal(t, int64(1), reg.Value("cache.booking.hits"))

	c.InvalidateBooking("b1")
	_, ok = c.GetBooking("b1")
	assert.False(t, ok)
	assert.Equal(t, int64(1), reg.Value("cache.booking.invalidations"))
}

func TestCachedBookingsAreCopies(t *testing.T) {
	reg := metrics.NewRegistry()
	c := New(testConfig(), reg)
	defer c.Stop()

	c.PutBooking(model.Booking{ID: "b1", Status: model.StatusConfirmed})

	first, ok := c.GetBooking("b1")
	require.True(t, ok)
	first.Status = model.StatusCancelled

	second, ok := c.GetBooking("b1")
	require.True(t, ok)
	assert.Equal(t, model.StatusConfirmed, second.Status, "mutating a returned booking must not change the cached copy")
}

func TestUserBookingsCache(t *testing.T) {
	reg := metrics.NewRegistry()
	c := New(testConfig(), reg)
	defer c.Stop()

	list := []model.Booking{{ID: "b1"}, {ID: "b2"}}
	c.PutUserBookings("u1", list)

	got, ok := c.GetUserBookings("u1")
	require.True(t, ok)
	assert.Len(t, got, 2)

	c.InvalidateUserBookings("u1")
	_, ok = c.GetUserBookings("u1")
	assert.False(t, ok)
}

func TestAvailabilityCacheStoresOnlyNegatives(t *testing.T) {
	reg := metrics.NewRegistry()
	c := New(testConfig(), reg)
	defer c.Stop()

	key := NewAvailabilityKey("r1", date("2024-01-10"), date("2024-01-12"))

	_, cached := c.GetAvailability(key)
	assert.False(t, cached)

	c.PutUnavailable(key)
	available, cached := c.GetAvailability(key)
	require.True(t, cached)
	assert.False(t, available)

	c.InvalidateAvailability(key)
	_, cached = c.GetAvailability(key)
	assert.False(t, cached)
}
