package validation

import (
	"testing"
	"time"

	apperrors "fitstudio/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email     string    `json:"client_email" validate:"required,email"`
	Name      string    `json:"client_name" validate:"required,max=5"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

func TestStruct_UsesJSONNames(t *testing.T) {
	start := time.Now()
	errs, err := Struct(New(), sample{
		Email:     "not-an-email",
		Name:      "too long name",
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	require.NoError(t, err)

	details := errs.Details()
	assert.Equal(t, "client_email must be a valid email address", details["client_email"])
	assert.Equal(t, "client_name must be at most 5 characters", details["client_name"])
	assert.Equal(t, "end_time must be after start_time", details["end_time"])
}

func TestStruct_Valid(t *testing.T) {
	start := time.Now()
	errs, err := Struct(New(), sample{
		Email:     "a@b.co",
		Name:      "Ann",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.NoError(t, errs.AsAppError("x"))
}

func TestErrors_AsAppError(t *testing.T) {
	var errs Errors
	errs.Add("capacity", "capacity must be at most 50")
	errs.Add("capacity", "ignored second message")

	err := errs.AsAppError("Class validation failed")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.True(t, errs.Has("capacity"))
	assert.Equal(t, "capacity must be at most 50", apperrors.AsAppError(err).Details["capacity"])
}
