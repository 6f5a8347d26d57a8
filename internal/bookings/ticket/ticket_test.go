package ticket

import (
	"bytes"
	"testing"
	"time"

	"fitstudio/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	start := time.Date(2030, 3, 4, 7, 0, 0, 0, time.UTC)
	booking := &model.Booking{
		ID:          "8b1e3c1e-3a4f-4b8e-9d52-1f0e6c1a2b3c",
		ClassID:     "c1",
		ClientName:  "Ravi",
		ClientEmail: "ravi@example.com",
		BookingTime: start.Add(-24 * time.Hour),
		Status:      "confirmed",
	}
	class := &model.FitnessClass{
		ID:         "c1",
		Name:       "Morning Flow",
		ClassType:  "yoga",
		Instructor: "Asha",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Timezone:   "Asia/Kolkata",
	}

	pdf, err := Render(booking, class)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Greater(t, len(pdf), 1000)
}

func TestRender_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	class := &model.FitnessClass{Name: "Spin", Timezone: "Nowhere/Land"}
	pdf, err := Render(&model.Booking{ID: "b1", ClassID: "c1"}, class)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestCheckInCode(t *testing.T) {
	code := CheckInCode(&model.Booking{ID: "b1", ClassID: "c1"})
	assert.Equal(t, "fitstudio:booking:b1:class:c1", code)
}
