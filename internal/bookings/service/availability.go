package service

import (
	"context"
	"time"

	bookingscache "stayhub/internal/bookings/cache"
	"stayhub/internal/bookings/repository"
)

// AvailabilityResolver answers whether a room is free for a date range.
// It caches only negative answers: a cached "conflict" can at worst reject
// a stay that just opened up, while a cached "free" could confirm a double
// booking.
type AvailabilityResolver struct {
	repo   repository.BookingRepository
	caches *bookingscache.Caches
}

func NewAvailabilityResolver(repo repository.BookingRepository, caches *bookingscache.Caches) *AvailabilityResolver {
	return &AvailabilityResolver{
		repo:   repo,
		caches: caches,
	}
}

// IsAvailable reports whether the room is free for [checkIn, checkOut).
// When excludeBookingID is set (date changes), the cache is bypassed both
// ways: the keyed answer cannot express "conflict, but only with the
// booking being moved".
func (r *AvailabilityResolver) IsAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeBookingID string) (bool, error) {
	useCache := excludeBookingID == ""
	key := bookingscache.NewAvailabilityKey(roomID, checkIn, checkOut)

	if useCache {
		if available, cached := r.caches.GetAvailability(key); cached && !available {
			return false, nil
		}
	}

	conflict, err := r.repo.ExistsOverlapping(ctx, roomID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, err
	}

	if conflict && useCache {
		r.caches.PutUnavailable(key)
	}

	return !conflict, nil
}
