package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "fitstudio/internal/bookings/errors"
	classeserrors "fitstudio/internal/classes/errors"
	"fitstudio/pkg/config"
	"fitstudio/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedClass(t *testing.T, s *Store, capacity int, start time.Time) *model.FitnessClass {
	t.Helper()
	class := &model.FitnessClass{
		Name:           "Morning Flow",
		ClassType:      "yoga",
		Instructor:     "Asha",
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
		Capacity:       capacity,
		AvailableSpots: capacity,
		Timezone:       "UTC",
		Status:         config.ClassScheduled,
	}
	require.NoError(t, s.Classes().Create(context.Background(), class))
	return class
}

func TestAdjustAvailability_Bounds(t *testing.T) {
	s := NewStore()
	class := seedClass(t, s, 1, time.Now().Add(time.Hour))
	ctx := context.Background()

	updated, err := s.Classes().AdjustAvailability(ctx, class.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.AvailableSpots)

	_, err = s.Classes().AdjustAvailability(ctx, class.ID, -1)
	assert.ErrorIs(t, err, classeserrors.ErrCapacityExceeded)

	_, err = s.Classes().AdjustAvailability(ctx, class.ID, 2)
	assert.ErrorIs(t, err, classeserrors.ErrCapacityExceeded)

	_, err = s.Classes().AdjustAvailability(ctx, "7f1d2c3e-0000-4000-8000-000000000000", -1)
	assert.ErrorIs(t, err, classeserrors.ErrNotFound)

	_, err = s.Classes().AdjustAvailability(ctx, "nope", -1)
	assert.ErrorIs(t, err, classeserrors.ErrInvalidID)
}

func TestExecuteTransaction_RollsBackOnError(t *testing.T) {
	s := NewStore()
	class := seedClass(t, s, 3, time.Now().Add(time.Hour))
	boom := errors.New("boom")

	err := s.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := s.Classes().AdjustAvailability(ctx, class.ID, -1); err != nil {
			return err
		}
		if err := s.Bookings().Create(ctx, &model.Booking{
			ClassID:     class.ID,
			ClientEmail: "a@example.com",
			Status:      config.Confirmed,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := s.Classes().FindByID(context.Background(), class.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.AvailableSpots)

	count, err := s.Bookings().CountActiveByClass(context.Background(), class.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestExecuteTransaction_Nested(t *testing.T) {
	s := NewStore()
	calls := 0
	err := s.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
		return s.ExecuteTransaction(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBookings_ActiveUniqueness(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	class := seedClass(t, s, 5, time.Now().Add(time.Hour))

	first := &model.Booking{ClassID: class.ID, ClientEmail: "a@example.com", Status: config.Confirmed}
	require.NoError(t, s.Bookings().Create(ctx, first))
	assert.True(t, first.Active)

	err := s.Bookings().Create(ctx, &model.Booking{ClassID: class.ID, ClientEmail: "a@example.com", Status: config.Confirmed})
	assert.ErrorIs(t, err, bookingserrors.ErrDuplicateActive)

	_, err = s.Bookings().UpdateStatus(ctx, first.ID, config.Confirmed, config.Cancelled)
	require.NoError(t, err)

	_, err = s.Bookings().UpdateStatus(ctx, first.ID, config.Confirmed, config.Completed)
	assert.ErrorIs(t, err, bookingserrors.ErrStatusChanged)

	require.NoError(t, s.Bookings().Create(ctx, &model.Booking{ClassID: class.ID, ClientEmail: "a@example.com", Status: config.Confirmed}))

	_, err = s.Bookings().FindActive(ctx, class.ID, "b@example.com")
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestFindByClient_JoinsAndOrders(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	yoga := seedClass(t, s, 5, time.Now().Add(time.Hour))
	later := seedClass(t, s, 5, time.Now().Add(3*time.Hour))

	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Bookings().Create(ctx, &model.Booking{ClassID: yoga.ID, ClientEmail: "a@example.com", Status: config.Confirmed, BookingTime: base}))
	require.NoError(t, s.Bookings().Create(ctx, &model.Booking{ClassID: later.ID, ClientEmail: "a@example.com", Status: config.Cancelled, BookingTime: base.Add(time.Minute)}))
	require.NoError(t, s.Bookings().Create(ctx, &model.Booking{ClassID: yoga.ID, ClientEmail: "b@example.com", Status: config.Confirmed, BookingTime: base}))

	views, err := s.Bookings().FindByClient(ctx, "a@example.com", "")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, later.ID, views[0].ClassID)
	assert.Equal(t, "Morning Flow", views[0].ClassName)
	assert.Equal(t, yoga.StartTime, views[1].StartTime)

	views, err = s.Bookings().FindByClient(ctx, "a@example.com", config.Confirmed)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, yoga.ID, views[0].ClassID)
}

func TestFindUpcoming_FiltersAndOrders(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	second := seedClass(t, s, 5, now.Add(2*time.Hour))
	first := seedClass(t, s, 5, now.Add(time.Hour))
	seedClass(t, s, 5, now.Add(-time.Hour))

	cancelled := seedClass(t, s, 5, now.Add(90*time.Minute))
	s.classes[cancelled.ID].Status = config.ClassCancelled

	classes, err := s.Classes().FindUpcoming(ctx, model.ClassFilter{}, now)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, first.ID, classes[0].ID)
	assert.Equal(t, second.ID, classes[1].ID)

	to := now.Add(90 * time.Minute)
	classes, err = s.Classes().FindUpcoming(ctx, model.ClassFilter{To: &to, ClassType: "yoga"}, now)
	require.NoError(t, err)
	require.Len(t, classes, 1)

	classes, err = s.Classes().FindUpcoming(ctx, model.ClassFilter{Instructor: "Nobody"}, now)
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestRefreshStatuses(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	running := seedClass(t, s, 5, now.Add(-30*time.Minute))
	ended := seedClass(t, s, 5, now.Add(-2*time.Hour))
	future := seedClass(t, s, 5, now.Add(time.Hour))

	changed, err := s.Classes().RefreshStatuses(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	assert.Equal(t, config.ClassActive, s.classes[running.ID].Status)
	assert.Equal(t, config.ClassCompleted, s.classes[ended.ID].Status)
	assert.Equal(t, config.ClassScheduled, s.classes[future.ID].Status)
}

func TestConcurrentTransactions_Serialize(t *testing.T) {
	s := NewStore()
	class := seedClass(t, s, 10, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
				_, err := s.Classes().AdjustAvailability(ctx, class.ID, -1)
				return err
			})
		}()
	}
	wg.Wait()

	stored, err := s.Classes().FindByID(context.Background(), class.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AvailableSpots)
}
