package validator

import (
	"fmt"
	"time"

	"fitstudio/pkg/config"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/model"
	"fitstudio/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	policy   config.StudioPolicy
}

func NewBookingValidator(policy config.StudioPolicy) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(),
		policy:   policy,
	}
}

// ValidateRequest checks a sanitized booking request before any store access.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	errs, err := validation.Struct(v.validate, req)
	if err != nil {
		return err
	}
	return errs.AsAppError("Booking validation failed")
}

// ValidateBookable refuses classes that were cancelled, already completed or
// have already started.
func (v *BookingValidator) ValidateBookable(class *model.FitnessClass, now time.Time) error {
	var errs validation.Errors

	switch {
	case class.Status == config.ClassCancelled || class.Status == config.ClassCompleted:
		errs.Add("class_id", fmt.Sprintf("class is %s and cannot be booked", class.Status))
	case !class.StartTime.After(now):
		errs.Add("class_id", "class has already started")
	}

	return errs.AsAppError("Class is not open for booking")
}

// ValidateStatus accepts an empty status as "any".
func (v *BookingValidator) ValidateStatus(status string) error {
	if status == "" || v.policy.BookingStatusAllowed(status) {
		return nil
	}
	return apperrors.Validation("Booking validation failed", map[string]any{
		"status": fmt.Sprintf("status must be one of: %v", v.policy.BookingAllowedStatuses),
	})
}

func (v *BookingValidator) ValidateEmail(email string) error {
	if err := v.validate.Var(email, "required,email,max=254"); err != nil {
		return apperrors.Validation("Booking validation failed", map[string]any{
			"client_email": "client_email must be a valid email address",
		})
	}
	return nil
}
