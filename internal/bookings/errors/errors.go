package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDuplicateActive is the storage uniqueness constraint on
	// (class_id, client_email) over non-cancelled bookings.
	ErrDuplicateActive = errors.New("active booking already exists for class and client")

	ErrStatusChanged = errors.New("booking status changed concurrently")
)
