package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "fitstudio/internal/bookings/errors"
	"fitstudio/internal/bookings/repository"
	"fitstudio/internal/bookings/ticket"
	"fitstudio/internal/bookings/validator"
	classeserrors "fitstudio/internal/classes/errors"
	classrepository "fitstudio/internal/classes/repository"
	"fitstudio/internal/events"
	"fitstudio/pkg/config"
	"fitstudio/pkg/db"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/model"
	"fitstudio/pkg/sanitizer"
	"fitstudio/pkg/tracing"
)

var tracer = tracing.Tracer("fitstudio/bookings")

type BookingService interface {
	Book(ctx context.Context, classID, clientName, clientEmail string) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByClient(ctx context.Context, email, status string) ([]*model.BookingView, error)
	Ticket(ctx context.Context, id string) ([]byte, error)
}

type bookingService struct {
	bookings  repository.BookingRepository
	classes   classrepository.ClassRepository
	tx        db.TransactionManager
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	bookings repository.BookingRepository,
	classes classrepository.ClassRepository,
	tx db.TransactionManager,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		bookings:  bookings,
		classes:   classes,
		tx:        tx,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Book reserves one spot. The duplicate check runs before the capacity check,
// so a client holding a seat in a full class gets DUPLICATE_BOOKING. The
// conditional decrement and the unique active-booking constraint make the
// outcome safe under concurrent calls.
func (s *bookingService) Book(ctx context.Context, classID, clientName, clientEmail string) (booking *model.Booking, err error) {
	ctx, span := tracing.Start(ctx, tracer, "BookingService.Book", tracing.String("class_id", classID))
	defer func() { tracing.End(span, err) }()

	return s.book(ctx, classID, clientName, clientEmail)
}

func (s *bookingService) book(ctx context.Context, classID, clientName, clientEmail string) (*model.Booking, error) {
	req := &model.BookingRequest{
		ClassID:     sanitizer.TrimAndNormalize(classID),
		ClientName:  sanitizer.SanitizeDisplayName(clientName),
		ClientEmail: sanitizer.SanitizeEmail(clientEmail),
	}

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"class_id", req.ClassID,
			"client_email", req.ClientEmail,
			"error", err,
		)
		return nil, err
	}

	var booking *model.Booking
	var class *model.FitnessClass

	// The store may run fn more than once, so everything it produces is
	// rebuilt on each attempt.
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		now := s.now()

		found, err := s.classes.FindByID(ctx, req.ClassID)
		if err != nil {
			if errors.Is(err, classeserrors.ErrNotFound) || errors.Is(err, classeserrors.ErrInvalidID) {
				return apperrors.NotFoundWithID("Class", req.ClassID)
			}
			return err
		}
		if err := s.validator.ValidateBookable(found, now); err != nil {
			return err
		}

		if err := s.ensureNoActiveBooking(ctx, req); err != nil {
			return err
		}

		updated, err := s.classes.AdjustAvailability(ctx, req.ClassID, -1)
		if err != nil {
			switch {
			case errors.Is(err, classeserrors.ErrCapacityExceeded):
				if dupErr := s.ensureNoActiveBooking(ctx, req); dupErr != nil {
					return dupErr
				}
				return apperrors.ClassFull(req.ClassID)
			case errors.Is(err, classeserrors.ErrNotFound):
				return apperrors.NotFoundWithID("Class", req.ClassID)
			}
			return err
		}

		created := &model.Booking{
			ClassID:     req.ClassID,
			ClientName:  req.ClientName,
			ClientEmail: req.ClientEmail,
			BookingTime: now,
			Status:      config.Confirmed,
			Active:      true,
		}
		if err := s.bookings.Create(ctx, created); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicateActive) {
				return apperrors.DuplicateBooking(req.ClassID, req.ClientEmail)
			}
			return err
		}

		booking, class = created, updated
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Booking rejected",
				"class_id", req.ClassID,
				"client_email", req.ClientEmail,
				"error", err,
			)
			return nil, err
		}
		s.cfg.Log.Error("Failed to book class",
			"class_id", req.ClassID,
			"client_email", req.ClientEmail,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to book class", err)
	}

	s.cfg.Log.Info("Booking confirmed",
		"id", booking.ID,
		"class_id", booking.ClassID,
		"client_email", booking.ClientEmail,
		"available_spots", class.AvailableSpots,
	)

	s.publish(ctx, events.BookingConfirmed, booking, events.Spots(class.AvailableSpots))
	return booking, nil
}

func (s *bookingService) ensureNoActiveBooking(ctx context.Context, req *model.BookingRequest) error {
	_, err := s.bookings.FindActive(ctx, req.ClassID, req.ClientEmail)
	switch {
	case err == nil:
		return apperrors.DuplicateBooking(req.ClassID, req.ClientEmail)
	case errors.Is(err, bookingserrors.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Cancel releases the booking's spot in the same transaction.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, config.Cancelled, events.BookingCancelled, +1)
}

func (s *bookingService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, config.Completed, events.BookingCompleted, 0)
}

// transition moves a confirmed booking to status and applies delta to its
// class's availability. Only confirmed bookings may move.
func (s *bookingService) transition(ctx context.Context, id, status, eventType string, delta int) (_ *model.Booking, err error) {
	ctx, span := tracing.Start(ctx, tracer, "BookingService.Transition",
		tracing.String("booking_id", id),
		tracing.String("to", status),
	)
	defer func() { tracing.End(span, err) }()

	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var booking *model.Booking
	var available *int

	err = s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		current, err := s.findBooking(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != config.Confirmed {
			return apperrors.InvalidTransition(current.Status, status)
		}

		updated, err := s.bookings.UpdateStatus(ctx, id, config.Confirmed, status)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrStatusChanged) {
				return apperrors.InvalidTransition(current.Status, status)
			}
			return err
		}

		if delta != 0 {
			class, err := s.classes.AdjustAvailability(ctx, updated.ClassID, delta)
			if err != nil {
				if errors.Is(err, classeserrors.ErrCapacityExceeded) || errors.Is(err, classeserrors.ErrNotFound) {
					return apperrors.Internal("Class availability is inconsistent with its bookings", err)
				}
				return err
			}
			available = events.Spots(class.AvailableSpots)
		}

		booking = updated
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Booking status change rejected", "id", id, "to", status, "error", err)
			return nil, err
		}
		s.cfg.Log.Error("Failed to change booking status", "id", id, "to", status, "error", err)
		return nil, apperrors.Storage("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking status changed",
		"id", booking.ID,
		"class_id", booking.ClassID,
		"status", booking.Status,
	)

	s.publish(ctx, eventType, booking, available)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to get booking by ID", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, err
	}
	return booking, nil
}

// Ticket renders the check-in pass of a confirmed booking.
func (s *bookingService) Ticket(ctx context.Context, id string) ([]byte, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != config.Confirmed {
		return nil, apperrors.Conflict("Only confirmed bookings have a check-in pass")
	}

	class, err := s.classes.FindByID(ctx, booking.ClassID)
	if err != nil {
		if errors.Is(err, classeserrors.ErrNotFound) {
			return nil, apperrors.Internal("Booking refers to a missing class", err)
		}
		s.cfg.Log.Error("Failed to load class for ticket", "id", id, "class_id", booking.ClassID, "error", err)
		return nil, apperrors.Storage("Failed to retrieve class", err)
	}

	pdf, err := ticket.Render(booking, class)
	if err != nil {
		s.cfg.Log.Error("Failed to render ticket", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to render ticket", err)
	}
	return pdf, nil
}

// ListByClient returns the client's bookings, most recent booking_time first.
func (s *bookingService) ListByClient(ctx context.Context, email, status string) ([]*model.BookingView, error) {
	email = sanitizer.SanitizeEmail(email)
	status = sanitizer.SanitizeCategory(status)

	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStatus(status); err != nil {
		return nil, err
	}

	views, err := s.bookings.FindByClient(ctx, email, status)
	if err != nil {
		s.cfg.Log.Error("Failed to list client bookings",
			"client_email", email,
			"status", status,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to retrieve bookings", err)
	}
	return views, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking, available *int) {
	event := events.Event{
		Type:        eventType,
		ClassID:     booking.ClassID,
		BookingID:   booking.ID,
		ClientEmail: booking.ClientEmail,
		Status:      booking.Status,
		Available:   available,
		OccurredAt:  s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
