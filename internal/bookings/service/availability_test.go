package service

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingscache "stayhub/internal/bookings/cache"
	"stayhub/pkg/config"
	mongotx "stayhub/pkg/db/mongo"
	"stayhub/pkg/metrics"
	"stayhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type mockBookingRepository struct {
	createFunc            func(ctx context.Context, booking *model.Booking) error
	findByIDFunc          func(ctx context.Context, id string) (*model.Booking, error)
	findByUserFunc        func(ctx context.Context, userID string) ([]model.Booking, error)
	updateFunc            func(ctx context.Context, id string, booking *model.Booking) error
	deleteFunc            func(ctx context.Context, id string) error
	existsOverlappingFunc func(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID)
	}
	return []model.Booking{}, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	return nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) ExistsOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	if m.existsOverlappingFunc != nil {
		return m.existsOverlappingFunc(ctx, roomID, checkIn, checkOut, excludeID)
	}
	return false, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func testCaches() *bookingscache.Caches {
	caches := bookingscache.New(&config.Config{
		BookingCacheTTL:       time.Minute,
		BookingCacheSize:      100,
		UserBookingsCacheTTL:  time.Minute,
		UserBookingsCacheSize: 100,
		AvailabilityCacheTTL:  time.Minute,
		AvailabilityCacheSize: 100,
		CacheSweepInterval:    time.Hour,
	}, metrics.NewRegistry())
	return caches
}

func date(s string) time.Time {
	d, err := time.ParseInLocation(model.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func TestIsAvailableCachesOnlyConflicts(t *testing.T) {
	caches := testCaches()
	defer caches.Stop()

	queries := 0
	repo := &mockBookingRepository{
		existsOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
			queries++
			return false, nil
		},
	}
	resolver := NewAvailabilityResolver(repo, caches)

	ctx := context.Background()
	checkIn, checkOut := date("2024-01-10"), date("2024-01-12")

	// A free room is never cached, so each check reaches storage.
	for i := 0; i < 3; i++ {
		available, err := resolver.IsAvailable(ctx, "r1", checkIn, checkOut, "")
		require.NoError(t, err)
		assert.True(t, available)
	}
	assert.Equal(t, 3, queries)
}

func TestIsAvailableServesCachedConflict(t *testing.T) {
	caches := testCaches()
	defer caches.Stop()

	queries := 0
	repo := &mockBookingRepository{
		existsOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
			queries++
			return true, nil
		},
	}
	resolver := NewAvailabilityResolver(repo, caches)

	ctx := context.Background()
	checkIn, checkOut := date("2024-01-10"), date("2024-01-12")

	for i := 0; i < 3; i++ {
		available, err := resolver.IsAvailable(ctx, "r1", checkIn, checkOut, "")
		require.NoError(t, err)
		assert.False(t, available)
	}
	assert.Equal(t, 1, queries, "conflict answers should be served from cache after the first query")
}

func TestIsAvailableBypassesCacheWhenExcluding(t *testing.T) {
	caches := testCaches()
	defer caches.Stop()

	queries := 0
	repo := &mockBookingRepository{
		existsOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
			queries++
			// Conflict only when the excluded booking is not filtered out.
			return excludeID == "", nil
		},
	}
	resolver := NewAvailabilityResolver(repo, caches)

	ctx := context.Background()
	checkIn, checkOut := date("2024-01-10"), date("2024-01-12")

	// Seed a cached conflict for the range.
	available, err := resolver.IsAvailable(ctx, "r1", checkIn, checkOut, "")
	require.NoError(t, err)
	require.False(t, available)

	// With an exclusion the cached conflict must not short-circuit: the
	// only overlap may be the booking being moved.
	available, err = resolver.IsAvailable(ctx, "r1", checkIn, checkOut, "b1")
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, 2, queries)

	// And the excluded answer must not have polluted the shared cache.
	available, err = resolver.IsAvailable(ctx, "r1", checkIn, checkOut, "")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsAvailablePropagatesStorageErrors(t *testing.T) {
	caches := testCaches()
	defer caches.Stop()

	repo := &mockBookingRepository{
		existsOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
			return false, errors.New("storage down")
		},
	}
	resolver := NewAvailabilityResolver(repo, caches)

	_, err := resolver.IsAvailable(context.Background(), "r1", date("2024-01-10"), date("2024-01-12"), "")
	assert.Error(t, err)
}
