package service

import (
	"context"
	"errors"
	"time"

	classeserrors "fitstudio/internal/classes/errors"
	"fitstudio/internal/classes/repository"
	"fitstudio/internal/classes/validator"
	"fitstudio/internal/events"
	"fitstudio/pkg/config"
	"fitstudio/pkg/db"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/model"
	"fitstudio/pkg/sanitizer"
)

type ClassService interface {
	Create(ctx context.Context, class *model.FitnessClass) error
	GetByID(ctx context.Context, id string) (*model.FitnessClass, error)
	ListUpcoming(ctx context.Context, filter model.ClassFilter) ([]*model.FitnessClass, error)
	RefreshStatuses(ctx context.Context) (int64, error)
}

type classService struct {
	repo      repository.ClassRepository
	tx        db.TransactionManager
	validator *validator.ClassValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewClassService(
	repo repository.ClassRepository,
	tx db.TransactionManager,
	validator *validator.ClassValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ClassService {
	return &classService{
		repo:      repo,
		tx:        tx,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *classService) Create(ctx context.Context, class *model.FitnessClass) error {
	if class == nil {
		return apperrors.InvalidInput("Class cannot be empty")
	}

	s.applyDefaults(class)
	s.sanitize(class)

	if err := s.validator.Validate(class); err != nil {
		s.cfg.Log.Warn("Class validation failed",
			"name", class.Name,
			"instructor", class.Instructor,
			"error", err,
		)
		return err
	}

	class.StartTime = class.StartTime.UTC()
	class.EndTime = class.EndTime.UTC()
	class.AvailableSpots = class.Capacity

	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		overlapping, err := s.repo.ExistsOverlappingByName(ctx, class.Name, class.StartTime, class.EndTime)
		if err != nil {
			return err
		}
		if overlapping {
			return apperrors.Conflict("A class with this name already overlaps the requested time range")
		}
		return s.repo.Create(ctx, class)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Class creation rejected", "name", class.Name, "error", err)
			return err
		}
		s.cfg.Log.Error("Failed to create class", "name", class.Name, "error", err)
		return apperrors.Storage("Failed to create class", err)
	}

	s.cfg.Log.Info("Class created successfully",
		"id", class.ID,
		"name", class.Name,
		"class_type", class.ClassType,
		"start_time", class.StartTime,
		"capacity", class.Capacity,
	)

	s.publish(ctx, events.Event{
		Type:       events.ClassCreated,
		ClassID:    class.ID,
		Status:     class.Status,
		Available:  events.Spots(class.AvailableSpots),
		OccurredAt: s.now(),
	})
	return nil
}

func (s *classService) GetByID(ctx context.Context, id string) (*model.FitnessClass, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Class ID cannot be empty")
	}

	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, classeserrors.ErrNotFound) || errors.Is(err, classeserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Class", id)
		}
		s.cfg.Log.Error("Failed to get class by ID", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to retrieve class", err)
	}

	return class, nil
}

func (s *classService) ListUpcoming(ctx context.Context, filter model.ClassFilter) ([]*model.FitnessClass, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperrors.InvalidInput("'to' must not be before 'from'")
	}
	filter.ClassType = sanitizer.SanitizeCategory(filter.ClassType)
	filter.Instructor = sanitizer.SanitizeDisplayName(filter.Instructor)

	classes, err := s.repo.FindUpcoming(ctx, filter, s.now())
	if err != nil {
		s.cfg.Log.Error("Failed to list upcoming classes",
			"class_type", filter.ClassType,
			"instructor", filter.Instructor,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to retrieve classes", err)
	}
	return classes, nil
}

func (s *classService) RefreshStatuses(ctx context.Context) (int64, error) {
	changed, err := s.repo.RefreshStatuses(ctx, s.now())
	if err != nil {
		s.cfg.Log.Error("Failed to refresh class statuses", "error", err)
		return changed, apperrors.Storage("Failed to refresh class statuses", err)
	}
	if changed > 0 {
		s.cfg.Log.Info("Class statuses refreshed", "changed", changed)
	}
	return changed, nil
}

func (s *classService) applyDefaults(class *model.FitnessClass) {
	if class.Timezone == "" {
		class.Timezone = s.cfg.Studio.DefaultTimezone
	}
	if class.Status == "" {
		class.Status = s.cfg.Studio.ClassDefaultStatus
	}
}

func (s *classService) sanitize(class *model.FitnessClass) {
	class.Name = sanitizer.SanitizeDisplayName(class.Name)
	class.ClassType = sanitizer.SanitizeCategory(class.ClassType)
	class.Instructor = sanitizer.SanitizeDisplayName(class.Instructor)
	class.CreatedBy = sanitizer.SanitizeDisplayName(class.CreatedBy)
	class.Timezone = sanitizer.SanitizeTimezone(class.Timezone)
	class.Status = sanitizer.SanitizeCategory(class.Status)
}

func (s *classService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish class event",
			"type", event.Type,
			"class_id", event.ClassID,
			"error", err,
		)
	}
}
