package memory

import (
	"context"
	"fmt"
	"sort"

	bookingserrors "fitstudio/internal/bookings/errors"
	"fitstudio/internal/bookings/repository"
	"fitstudio/pkg/config"
	"fitstudio/pkg/model"

	"github.com/google/uuid"
)

type BookingRepository struct {
	store *Store
}

var _ repository.BookingRepository = (*BookingRepository)(nil)

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	defer r.store.lock(ctx)()

	booking.Active = booking.Status != config.Cancelled
	if booking.Active {
		if _, ok := r.findActive(booking.ClassID, booking.ClientEmail); ok {
			return bookingserrors.ErrDuplicateActive
		}
	}

	now := r.store.timestamp()
	booking.ID = newID()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	cp := *booking
	r.store.bookings[booking.ID] = &cp
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	defer r.store.lock(ctx)()

	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *booking
	return &cp, nil
}

func (r *BookingRepository) FindActive(ctx context.Context, classID, email string) (*model.Booking, error) {
	defer r.store.lock(ctx)()

	booking, ok := r.findActive(classID, email)
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *booking
	return &cp, nil
}

func (r *BookingRepository) findActive(classID, email string) (*model.Booking, bool) {
	for _, b := range r.store.bookings {
		if b.Active && b.ClassID == classID && b.ClientEmail == email {
			return b, true
		}
	}
	return nil, false
}

func (r *BookingRepository) FindByClient(ctx context.Context, email, status string) ([]*model.BookingView, error) {
	defer r.store.lock(ctx)()

	views := make([]*model.BookingView, 0)
	for _, b := range r.store.bookings {
		if b.ClientEmail != email || (status != "" && b.Status != status) {
			continue
		}
		class, ok := r.store.classes[b.ClassID]
		if !ok {
			continue
		}
		views = append(views, &model.BookingView{
			Booking:    *b,
			ClassName:  class.Name,
			ClassType:  class.ClassType,
			Instructor: class.Instructor,
			StartTime:  class.StartTime,
			EndTime:    class.EndTime,
			Timezone:   class.Timezone,
		})
	}

	sort.Slice(views, func(i, j int) bool {
		if !views[i].BookingTime.Equal(views[j].BookingTime) {
			return views[i].BookingTime.After(views[j].BookingTime)
		}
		return views[i].ID > views[j].ID
	})
	return views, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id, from, to string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	defer r.store.lock(ctx)()

	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if booking.Status != from {
		return nil, bookingserrors.ErrStatusChanged
	}

	active := to != config.Cancelled
	if active && !booking.Active {
		if _, exists := r.findActive(booking.ClassID, booking.ClientEmail); exists {
			return nil, bookingserrors.ErrDuplicateActive
		}
	}

	booking.Status = to
	booking.Active = active
	booking.UpdatedAt = r.store.timestamp()
	cp := *booking
	return &cp, nil
}

func (r *BookingRepository) CountActiveByClass(ctx context.Context, classID string) (int64, error) {
	defer r.store.lock(ctx)()

	var count int64
	for _, b := range r.store.bookings {
		if b.Active && b.ClassID == classID {
			count++
		}
	}
	return count, nil
}
