package service

import (
	"context"
	"errors"
	"time"

	bookingscache "stayhub/internal/bookings/cache"
	bookingserrors "stayhub/internal/bookings/errors"
	"stayhub/internal/bookings/events"
	"stayhub/internal/bookings/repository"
	"stayhub/internal/bookings/validator"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	UpdateDates(ctx context.Context, id string, req *model.DateChangeRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByUser(ctx context.Context, userID string) ([]model.Booking, error)
	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	catalog   repository.CatalogRepository
	resolver  *AvailabilityResolver
	caches    *bookingscache.Caches
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	catalog repository.CatalogRepository,
	resolver *AvailabilityResolver,
	caches *bookingscache.Caches,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		catalog:   catalog,
		resolver:  resolver,
		caches:    caches,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	checkIn, checkOut, err := s.validator.ValidateCreate(req)
	if err != nil {
		return nil, toValidationError(err)
	}

	if _, err := s.catalog.FindUserByID(ctx, req.UserID); err != nil {
		return nil, s.mapCatalogError(err, "User", req.UserID)
	}

	room, err := s.catalog.FindRoomByID(ctx, req.RoomID)
	if err != nil {
		return nil, s.mapCatalogError(err, "Room", req.RoomID)
	}

	booking := &model.Booking{
		UserID:     req.UserID,
		RoomID:     req.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: room.PricePerNight * float64(model.Nights(checkIn, checkOut)),
		Status:     model.StatusConfirmed,
	}

	// The room lock serializes the availability check with the insert, so
	// two concurrent requests for overlapping dates cannot both pass.
	lock, err := s.acquireRoomLock(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	defer s.releaseRoomLock(ctx, lock)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		available, err := s.resolver.IsAvailable(sessCtx, req.RoomID, checkIn, checkOut, "")
		if err != nil {
			return apperrors.Internal("Failed to check room availability", err)
		}
		if !available {
			return apperrors.Conflict("Room is not available for the selected dates")
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"room_id", req.RoomID,
			"user_id", req.UserID,
			"error", err,
		)
		return nil, err
	}

	s.caches.PutBooking(*booking)
	s.caches.InvalidateUserBookings(booking.UserID)
	s.caches.InvalidateRoomAvailability(booking.RoomID)

	s.publish(ctx, events.NewBookingEvent(events.TypeBookingCreated, booking, s.cfg.InstanceID))

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"user_id", booking.UserID,
		"nights", booking.Nights(),
		"total_price", booking.TotalPrice,
	)
	return booking, nil
}

func (s *bookingService) UpdateDates(ctx context.Context, id string, req *model.DateChangeRequest) (*model.Booking, error) {
	checkIn, checkOut, err := s.validator.ValidateDateChange(req)
	if err != nil {
		return nil, toValidationError(err)
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == model.StatusCancelled {
		return nil, apperrors.Conflict("Cannot change dates of a cancelled booking")
	}

	room, err := s.catalog.FindRoomByID(ctx, booking.RoomID)
	if err != nil {
		return nil, s.mapCatalogError(err, "Room", booking.RoomID)
	}

	prevCheckIn, prevCheckOut := booking.CheckIn, booking.CheckOut

	lock, err := s.acquireRoomLock(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	defer s.releaseRoomLock(ctx, lock)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Exclude this booking so its current dates do not conflict with
		// themselves.
		available, err := s.resolver.IsAvailable(sessCtx, booking.RoomID, checkIn, checkOut, booking.ID)
		if err != nil {
			return apperrors.Internal("Failed to check room availability", err)
		}
		if !available {
			return apperrors.Conflict("Room is not available for the new dates")
		}

		booking.CheckIn = checkIn
		booking.CheckOut = checkOut
		booking.TotalPrice = room.PricePerNight * float64(model.Nights(checkIn, checkOut))

		if err := s.repo.Update(sessCtx, booking.ID, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", booking.ID)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking dates", "id", id, "error", err)
		return nil, err
	}

	s.caches.PutBooking(*booking)
	s.caches.InvalidateUserBookings(booking.UserID)
	// Covers both the old and the new date ranges.
	s.caches.InvalidateRoomAvailability(booking.RoomID)

	event := events.NewBookingEvent(events.TypeBookingUpdated, booking, s.cfg.InstanceID)
	event.PrevCheckIn = prevCheckIn.Format(model.DateLayout)
	event.PrevCheckOut = prevCheckOut.Format(model.DateLayout)
	s.publish(ctx, event)

	s.cfg.Log.Info("Booking dates updated",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"check_in", req.CheckIn,
		"check_out", req.CheckOut,
	)
	return booking, nil
}

// Cancel marks a booking cancelled, freeing its dates. Cancelling an
// already-cancelled booking is a no-op.
func (s *bookingService) Cancel(ctx context.Context, id string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status == model.StatusCancelled {
		return nil
	}

	booking.Status = model.StatusCancelled
	if err := s.repo.Update(ctx, booking.ID, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.caches.InvalidateBooking(booking.ID)
	s.caches.InvalidateUserBookings(booking.UserID)
	s.caches.InvalidateRoomAvailability(booking.RoomID)

	s.publish(ctx, events.NewBookingEvent(events.TypeBookingCancelled, booking, s.cfg.InstanceID))

	s.cfg.Log.Info("Booking cancelled", "id", booking.ID, "room_id", booking.RoomID)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if cached, ok := s.caches.GetBooking(id); ok {
		return &cached, nil
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	s.caches.PutBooking(*booking)
	return booking, nil
}

func (s *bookingService) GetByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	if cached, ok := s.caches.GetUserBookings(userID); ok {
		return cached, nil
	}

	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings for user", err)
	}

	s.caches.PutUserBookings(userID, bookings)
	return bookings, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	available, err := s.resolver.IsAvailable(ctx, roomID, checkIn, checkOut, "")
	if err != nil {
		return false, apperrors.Internal("Failed to check room availability", err)
	}
	return available, nil
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (*model.RoomLock, error) {
	lock, err := s.lockRepo.Acquire(ctx, roomID)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Room is being booked by another request, please retry")
		}
		return nil, apperrors.Internal("Failed to acquire room lock", err)
	}
	return lock, nil
}

func (s *bookingService) releaseRoomLock(ctx context.Context, lock *model.RoomLock) {
	if err := s.lockRepo.Release(ctx, lock); err != nil {
		s.cfg.Log.Warn("Failed to release room lock", "lock_id", lock.ID, "error", err)
	}
}

func (s *bookingService) publish(ctx context.Context, event events.BookingEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func (s *bookingService) mapCatalogError(err error, resource, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrUserNotFound), errors.Is(err, bookingserrors.ErrRoomNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid " + resource + " ID format")
	default:
		return apperrors.Internal("Failed to look up "+resource, err)
	}
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for _, ve := range verrs {
			details[ve.Field] = ve.Message
		}
		return apperrors.Validation("Booking request validation failed", details)
	}
	return apperrors.InvalidInput(err.Error())
}
