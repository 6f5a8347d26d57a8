package repository

import (
	"context"

	"fitstudio/pkg/model"
)

const CollectionName = "bookings"

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	// FindActive returns the non-cancelled booking for the pair or ErrNotFound.
	FindActive(ctx context.Context, classID, email string) (*model.Booking, error)
	// FindByClient joins each booking with its class, newest booking_time
	// first. An empty status means every status.
	FindByClient(ctx context.Context, email, status string) ([]*model.BookingView, error)
	// UpdateStatus moves the booking from one status to another only if it is
	// still in from. It fails with ErrStatusChanged otherwise.
	UpdateStatus(ctx context.Context, id, from, to string) (*model.Booking, error)
	CountActiveByClass(ctx context.Context, classID string) (int64, error)
}
