package validator

import (
	"fmt"
	"time"

	"fitstudio/pkg/config"
	"fitstudio/pkg/model"
	"fitstudio/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ClassValidator struct {
	validate *validator.Validate
	policy   config.StudioPolicy
}

func NewClassValidator(policy config.StudioPolicy) *ClassValidator {
	return &ClassValidator{
		validate: validation.New(),
		policy:   policy,
	}
}

// Validate expects a sanitized class with defaults applied. The returned
// error is a VALIDATION_ERROR AppError carrying one message per field.
func (v *ClassValidator) Validate(class *model.FitnessClass) error {
	errs, err := validation.Struct(v.validate, class)
	if err != nil {
		return err
	}

	v.validateBusinessRules(class, &errs)
	return errs.AsAppError("Class validation failed")
}

func (v *ClassValidator) validateBusinessRules(class *model.FitnessClass, errs *validation.Errors) {
	if !errs.Has("end_time") && !errs.Has("start_time") {
		duration := class.Duration()
		switch {
		case duration < v.policy.MinDuration():
			errs.Add("end_time", fmt.Sprintf("class must last at least %d minutes", v.policy.ClassMinDurationMinutes))
		case duration > v.policy.MaxDuration():
			errs.Add("end_time", fmt.Sprintf("class cannot last more than %d hours", v.policy.ClassMaxDurationHours))
		}
	}

	if !errs.Has("capacity") && (class.Capacity < v.policy.ClassMinCapacity || class.Capacity > v.policy.ClassMaxCapacity) {
		errs.Add("capacity", fmt.Sprintf("capacity must be between %d and %d", v.policy.ClassMinCapacity, v.policy.ClassMaxCapacity))
	}

	if !errs.Has("status") && !v.policy.ClassStatusAllowed(class.Status) {
		errs.Add("status", fmt.Sprintf("status must be one of: %v", v.policy.ClassAllowedStatuses))
	}

	if !errs.Has("timezone") {
		if _, err := time.LoadLocation(class.Timezone); err != nil || class.Timezone == "" {
			errs.Add("timezone", fmt.Sprintf("unknown timezone: %q", class.Timezone))
		}
	}
}
