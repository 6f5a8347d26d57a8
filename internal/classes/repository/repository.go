package repository

import (
	"context"
	"time"

	"fitstudio/pkg/model"
)

const CollectionName = "classes"

type ClassRepository interface {
	Create(ctx context.Context, class *model.FitnessClass) error
	FindByID(ctx context.Context, id string) (*model.FitnessClass, error)
	// FindUpcoming returns classes starting at or after now, cancelled ones
	// excluded, ordered by start_time then ID.
	FindUpcoming(ctx context.Context, filter model.ClassFilter, now time.Time) ([]*model.FitnessClass, error)
	// AdjustAvailability applies available_spots += delta in one conditional
	// write and returns the updated class.
	AdjustAvailability(ctx context.Context, id string, delta int) (*model.FitnessClass, error)
	ExistsOverlappingByName(ctx context.Context, name string, start, end time.Time) (bool, error)
	// RefreshStatuses moves scheduled classes to active once started and
	// scheduled or active ones to completed once ended.
	RefreshStatuses(ctx context.Context, now time.Time) (int64, error)
}
