package validator

import (
	"testing"
	"time"

	"fitstudio/pkg/config"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/model"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequest(t *testing.T) {
	v := NewBookingValidator(config.DefaultStudioPolicy())

	tests := []struct {
		name  string
		req   model.BookingRequest
		field string
	}{
		{"valid", model.BookingRequest{ClassID: "c1", ClientName: "Ana", ClientEmail: "ana@example.com"}, ""},
		{"missing class", model.BookingRequest{ClientName: "Ana", ClientEmail: "ana@example.com"}, "class_id"},
		{"missing name", model.BookingRequest{ClassID: "c1", ClientEmail: "ana@example.com"}, "client_name"},
		{"bad email", model.BookingRequest{ClassID: "c1", ClientName: "Ana", ClientEmail: "ana.example.com"}, "client_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRequest(&tt.req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			appErr := apperrors.AsAppError(err)
			assert.Equal(t, apperrors.CodeValidation, appErr.Code)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}
}

func TestValidateBookable(t *testing.T) {
	v := NewBookingValidator(config.DefaultStudioPolicy())
	now := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

	open := &model.FitnessClass{Status: config.ClassScheduled, StartTime: now.Add(time.Hour)}
	assert.NoError(t, v.ValidateBookable(open, now))

	started := &model.FitnessClass{Status: config.ClassActive, StartTime: now.Add(-time.Minute)}
	assert.True(t, apperrors.HasCode(v.ValidateBookable(started, now), apperrors.CodeValidation))

	cancelled := &model.FitnessClass{Status: config.ClassCancelled, StartTime: now.Add(time.Hour)}
	assert.True(t, apperrors.HasCode(v.ValidateBookable(cancelled, now), apperrors.CodeValidation))
}

func TestValidateStatus(t *testing.T) {
	v := NewBookingValidator(config.DefaultStudioPolicy())

	assert.NoError(t, v.ValidateStatus(""))
	assert.NoError(t, v.ValidateStatus(config.Confirmed))
	assert.True(t, apperrors.HasCode(v.ValidateStatus("refunded"), apperrors.CodeValidation))
}

func TestValidateEmail(t *testing.T) {
	v := NewBookingValidator(config.DefaultStudioPolicy())

	assert.NoError(t, v.ValidateEmail("ana@example.com"))
	assert.True(t, apperrors.HasCode(v.ValidateEmail(""), apperrors.CodeValidation))
	assert.True(t, apperrors.HasCode(v.ValidateEmail("not-an-email"), apperrors.CodeValidation))
}
