package model

import (
	"time"
)

// DateLayout is the wire format for check-in/check-out calendar dates.
const DateLayout = "2006-01-02"

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is a stay reservation. Dates form the half-open interval
// [CheckIn, CheckOut): the check-out day is not occupied.
type Booking struct {
	ID         string        `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     string        `json:"user_id" bson:"user_id"`
	RoomID     string        `json:"room_id" bson:"room_id"`
	CheckIn    time.Time     `json:"check_in" bson:"check_in"`
	CheckOut   time.Time     `json:"check_out" bson:"check_out"`
	TotalPrice float64       `json:"total_price" bson:"total_price"`
	Status     BookingStatus `json:"status" bson:"status"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Nights returns the whole-day length of the stay.
func (b *Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Overlaps reports whether two half-open date intervals intersect.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}

// BookingRequest carries create input. Dates arrive as calendar-date strings
// and are parsed by the validator.
type BookingRequest struct {
	UserID   string `json:"user_id" validate:"required,mongodb"`
	RoomID   string `json:"room_id" validate:"required,mongodb"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

// DateChangeRequest carries the new dates for a booking update.
type DateChangeRequest struct {
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}
