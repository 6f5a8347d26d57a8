package errors

import "errors"

var (
	ErrNotFound = errors.New("class not found")

	ErrInvalidID = errors.New("invalid class ID format")

	// ErrCapacityExceeded means an availability adjustment would leave
	// available_spots outside [0, capacity]. It never leaves the service layer.
	ErrCapacityExceeded = errors.New("class availability out of range")
)
