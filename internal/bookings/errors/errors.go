package errors

import "errors"

var (
	ErrNotFound     = errors.New("booking not found")
	ErrInvalidID    = errors.New("invalid booking ID format")
	ErrUserNotFound = errors.New("user not found")
	ErrRoomNotFound = errors.New("room not found")
)
