package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	classeserrors "fitstudio/internal/classes/errors"
	"fitstudio/internal/classes/repository"
	"fitstudio/pkg/config"
	"fitstudio/pkg/model"

	"github.com/google/uuid"
)

type ClassRepository struct {
	store *Store
}

var _ repository.ClassRepository = (*ClassRepository)(nil)

func validClassID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", classeserrors.ErrInvalidID, id)
	}
	return nil
}

func (r *ClassRepository) Create(ctx context.Context, class *model.FitnessClass) error {
	defer r.store.lock(ctx)()

	now := r.store.timestamp()
	class.ID = newID()
	class.CreatedAt = now
	class.UpdatedAt = now

	cp := *class
	r.store.classes[class.ID] = &cp
	return nil
}

func (r *ClassRepository) FindByID(ctx context.Context, id string) (*model.FitnessClass, error) {
	if err := validClassID(id); err != nil {
		return nil, err
	}
	defer r.store.lock(ctx)()

	class, ok := r.store.classes[id]
	if !ok {
		return nil, classeserrors.ErrNotFound
	}
	cp := *class
	return &cp, nil
}

func (r *ClassRepository) FindUpcoming(ctx context.Context, filter model.ClassFilter, now time.Time) ([]*model.FitnessClass, error) {
	defer r.store.lock(ctx)()

	from := now
	if filter.From != nil && filter.From.After(now) {
		from = *filter.From
	}

	classes := make([]*model.FitnessClass, 0)
	for _, c := range r.store.classes {
		switch {
		case c.StartTime.Before(from):
		case filter.To != nil && c.StartTime.After(*filter.To):
		case c.Status == config.ClassCancelled:
		case filter.ClassType != "" && c.ClassType != filter.ClassType:
		case filter.Instructor != "" && c.Instructor != filter.Instructor:
		default:
			cp := *c
			classes = append(classes, &cp)
		}
	}

	sort.Slice(classes, func(i, j int) bool {
		if !classes[i].StartTime.Equal(classes[j].StartTime) {
			return classes[i].StartTime.Before(classes[j].StartTime)
		}
		return classes[i].ID < classes[j].ID
	})
	return classes, nil
}

func (r *ClassRepository) AdjustAvailability(ctx context.Context, id string, delta int) (*model.FitnessClass, error) {
	if err := validClassID(id); err != nil {
		return nil, err
	}
	defer r.store.lock(ctx)()

	class, ok := r.store.classes[id]
	if !ok {
		return nil, classeserrors.ErrNotFound
	}

	next := class.AvailableSpots + delta
	if next < 0 || next > class.Capacity {
		return nil, classeserrors.ErrCapacityExceeded
	}

	class.AvailableSpots = next
	class.UpdatedAt = r.store.timestamp()
	cp := *class
	return &cp, nil
}

func (r *ClassRepository) ExistsOverlappingByName(ctx context.Context, name string, start, end time.Time) (bool, error) {
	defer r.store.lock(ctx)()

	for _, c := range r.store.classes {
		if c.Name == name && c.Status != config.ClassCancelled && c.StartTime.Before(end) && c.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ClassRepository) RefreshStatuses(ctx context.Context, now time.Time) (int64, error) {
	defer r.store.lock(ctx)()

	var changed int64
	stamp := r.store.timestamp()
	for _, c := range r.store.classes {
		switch {
		case (c.Status == config.ClassScheduled || c.Status == config.ClassActive) && !c.EndTime.After(now):
			c.Status = config.ClassCompleted
		case c.Status == config.ClassScheduled && !c.StartTime.After(now):
			c.Status = config.ClassActive
		default:
			continue
		}
		c.UpdatedAt = stamp
		changed++
	}
	return changed, nil
}
