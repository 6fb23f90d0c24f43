package cache

import (
	"sync"
	"time"

	"stayhub/pkg/cache"
	"stayhub/pkg/config"
	"stayhub/pkg/metrics"
	"stayhub/pkg/model"
)

// AvailabilityKey identifies one availability question: is this room free
// for this exact date range. Dates are normalized to calendar-date strings
// so the key is comparable.
type AvailabilityKey struct {
	RoomID   string
	CheckIn  string
	CheckOut string
}

func NewAvailabilityKey(roomID string, checkIn, checkOut time.Time) AvailabilityKey {
	return AvailabilityKey{
		RoomID:   roomID,
		CheckIn:  checkIn.Format(model.DateLayout),
		CheckOut: checkOut.Format(model.DateLayout),
	}
}

// Caches bundles the three read-path caches. Bookings and user listings
// hold value copies so callers cannot mutate cached state; the availability
// cache holds only negative answers (false = known conflict).
type Caches struct {
	bookings     *cache.Cache[string, model.Booking]
	userBookings *cache.Cache[string, []model.Booking]
	availability *cache.Cache[AvailabilityKey, bool]

	reg *metrics.Registry

	sweepStop chan struct{}
	stopOnce  sync.Once
}

func New(cfg *config.Config, reg *metrics.Registry) *Caches {
	c := &Caches{
		bookings:     cache.New[string, model.Booking](cfg.BookingCacheTTL, cfg.BookingCacheSize),
		userBookings: cache.New[string, []model.Booking](cfg.UserBookingsCacheTTL, cfg.UserBookingsCacheSize),
		availability: cache.New[AvailabilityKey, bool](cfg.AvailabilityCacheTTL, cfg.AvailabilityCacheSize),
		reg:          reg,
		sweepStop:    make(chan struct{}),
	}

	go c.sweep(cfg.CacheSweepInterval)

	return c
}

// sweep evicts expired entries in the background so idle caches do not pin
// stale data until the next lookup touches it.
func (c *Caches) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purged := c.bookings.PurgeExpired() +
				c.userBookings.PurgeExpired() +
				c.availability.PurgeExpired()
			c.reg.Add("cache.purged", int64(purged))
		case <-c.sweepStop:
			return
		}
	}
}

func (c *Caches) Stop() {
	c.stopOnce.Do(func() {
		close(c.sweepStop)
	})
}

func (c *Caches) GetBooking(id string) (model.Booking, bool) {
	b, ok := c.bookings.Get(id)
	c.count("cache.booking", ok)
	return b, ok
}

func (c *Caches) PutBooking(b model.Booking) {
	c.bookings.Put(b.ID, b)
	c.reg.Inc("cache.booking.puts")
}

func (c *Caches) InvalidateBooking(id string) {
	c.bookings.Invalidate(id)
	c.reg.Inc("cache.booking.invalidations")
}

func (c *Caches) GetUserBookings(userID string) ([]model.Booking, bool) {
	list, ok := c.userBookings.Get(userID)
	c.count("cache.user_bookings", ok)
	return list, ok
}

func (c *Caches) PutUserBookings(userID string, list []model.Booking) {
	c.userBookings.Put(userID, list)
	c.reg.Inc("cache.user_bookings.puts")
}

func (c *Caches) InvalidateUserBookings(userID string) {
	c.userBookings.Invalidate(userID)
	c.reg.Inc("cache.user_bookings.invalidations")
}

// GetAvailability returns (available, cached). Only negative answers are
// ever stored, so a cache hit always means "known conflict".
func (c *Caches) GetAvailability(key AvailabilityKey) (bool, bool) {
	v, ok := c.availability.Get(key)
	c.count("cache.availability", ok)
	return v, ok
}

// PutUnavailable records a known conflict for the key. Positive answers
// are never cached: a room observed free can be booked a moment later, and
// serving that stale "free" would invite double bookings.
func (c *Caches) PutUnavailable(key AvailabilityKey) {
	c.availability.Put(key, false)
	c.reg.Inc("cache.availability.puts")
}

func (c *Caches) InvalidateAvailability(key AvailabilityKey) {
	c.availability.Invalidate(key)
	c.reg.Inc("cache.availability.invalidations")
}

// InvalidateRoomAvailability drops every cached answer for the room. Any
// booking write can change the answer for ranges other than the one
// written, so per-key invalidation is not enough.
func (c *Caches) InvalidateRoomAvailability(roomID string) {
	removed := c.availability.InvalidateFunc(func(key AvailabilityKey) bool {
		return key.RoomID == roomID
	})
	c.reg.Add("cache.availability.invalidations", int64(removed))
}

func (c *Caches) count(prefix string, hit bool) {
	if hit {
		c.reg.Inc(prefix + ".hits")
	} else {
		c.reg.Inc(prefix + ".misses")
	}
}
