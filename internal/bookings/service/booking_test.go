package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fitstudio/internal/bookings/validator"
	classeserrors "fitstudio/internal/classes/errors"
	classrepository "fitstudio/internal/classes/repository"
	"fitstudio/internal/events"
	"fitstudio/internal/storage/memory"
	"fitstudio/pkg/config"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var fixedNow = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *bookingService
	store *memory.Store
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Log:    logger.Discard(),
		Studio: config.DefaultStudioPolicy(),
	}
	store := memory.NewStore()
	pub := &recordingPublisher{}
	svc := NewBookingService(
		store.Bookings(),
		store.Classes(),
		store,
		validator.NewBookingValidator(cfg.Studio),
		pub,
		cfg,
	).(*bookingService)
	svc.now = func() time.Time { return fixedNow }
	return &fixture{svc: svc, store: store, pub: pub}
}

func (f *fixture) class(t *testing.T, capacity int) *model.FitnessClass {
	t.Helper()
	start := fixedNow.Add(24 * time.Hour)
	class := &model.FitnessClass{
		Name:           "Sunrise Flow",
		ClassType:      "yoga",
		Instructor:     "Asha",
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
		Capacity:       capacity,
		AvailableSpots: capacity,
		Timezone:       "UTC",
		Status:         config.ClassScheduled,
	}
	require.NoError(t, f.store.Classes().Create(context.Background(), class))
	return class
}

// assertInvariant checks available_spots == capacity - active bookings.
func (f *fixture) assertInvariant(t *testing.T, classID string) *model.FitnessClass {
	t.Helper()
	ctx := context.Background()
	class, err := f.store.Classes().FindByID(ctx, classID)
	require.NoError(t, err)
	active, err := f.store.Bookings().CountActiveByClass(ctx, classID)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, class.AvailableSpots, 0)
	assert.LessOrEqual(t, class.AvailableSpots, class.Capacity)
	assert.Equal(t, int64(class.Capacity-class.AvailableSpots), active)
	return class
}

func TestBook_FullThenDuplicateScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.class(t, 1)

	booking, err := f.svc.Book(ctx, class.ID, "Client A", "A@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, config.Confirmed, booking.Status)
	assert.Equal(t, "a@example.com", booking.ClientEmail)
	assert.Equal(t, fixedNow, booking.BookingTime)
	assert.Equal(t, 0, f.assertInvariant(t, class.ID).AvailableSpots)

	_, err = f.svc.Book(ctx, class.ID, "Client B", "b@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeClassFull), "got %v", err)

	_, err = f.svc.Book(ctx, class.ID, "Client A", "a@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateBooking), "got %v", err)

	f.assertInvariant(t, class.ID)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.BookingConfirmed, f.pub.events[0].Type)
	require.NotNil(t, f.pub.events[0].Available)
	assert.Equal(t, 0, *f.pub.events[0].Available)
}

func TestBook_Validation(t *testing.T) {
	f := newFixture(t)
	class := f.class(t, 5)

	_, err := f.svc.Book(context.Background(), class.ID, "  ", "not-an-email")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "client_name")
	assert.Contains(t, appErr.Details, "client_email")
	assert.Equal(t, 5, f.assertInvariant(t, class.ID).AvailableSpots)
}

func TestBook_ClassNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), "3b241101-e2bb-4255-8caf-4136c566a962", "Ana", "ana@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Book(context.Background(), "garbage", "Ana", "ana@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestBook_ClassNotOpen(t *testing.T) {
	f := newFixture(t)
	class := f.class(t, 5)

	f.svc.now = func() time.Time { return class.StartTime.Add(time.Minute) }
	_, err := f.svc.Book(context.Background(), class.ID, "Ana", "ana@example.com")

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "class_id")
	assert.Equal(t, 5, f.assertInvariant(t, class.ID).AvailableSpots)
}

func TestCancel_ReleasesSpot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.class(t, 1)

	booking, err := f.svc.Book(ctx, class.ID, "Client A", "a@example.com")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, config.Cancelled, cancelled.Status)
	assert.Equal(t, 1, f.assertInvariant(t, class.ID).AvailableSpots)

	_, err = f.svc.Book(ctx, class.ID, "Client B", "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, f.assertInvariant(t, class.ID).AvailableSpots)

	_, err = f.svc.Cancel(ctx, booking.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	f.assertInvariant(t, class.ID)
}

func TestCancel_ThenRebookSameClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.class(t, 2)

	first, err := f.svc.Book(ctx, class.ID, "Client A", "a@example.com")
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	second, err := f.svc.Book(ctx, class.ID, "Client A", "a@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, f.assertInvariant(t, class.ID).AvailableSpots)
}

func TestComplete_KeepsCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.class(t, 3)

	booking, err := f.svc.Book(ctx, class.ID, "Client A", "a@example.com")
	require.NoError(t, err)

	completed, err := f.svc.Complete(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, config.Completed, completed.Status)
	assert.Equal(t, 2, f.assertInvariant(t, class.ID).AvailableSpots)

	_, err = f.svc.Cancel(ctx, booking.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	_, err = f.svc.Complete(ctx, "3b241101-e2bb-4255-8caf-4136c566a962")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	last := f.pub.events[len(f.pub.events)-1]
	assert.Equal(t, events.BookingCompleted, last.Type)
	assert.Nil(t, last.Available)
}

func TestListByClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.class(t, 5)

	booking, err := f.svc.Book(ctx, class.ID, "Client A", "a@example.com")
	require.NoError(t, err)

	views, err := f.svc.ListByClient(ctx, " A@EXAMPLE.com", "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, booking.ID, views[0].ID)
	assert.Equal(t, "Sunrise Flow", views[0].ClassName)
	assert.Equal(t, "Asha", views[0].Instructor)

	again, err := f.svc.ListByClient(ctx, "a@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, views, again)

	views, err = f.svc.ListByClient(ctx, "a@example.com", config.Cancelled)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.svc.ListByClient(ctx, "a@example.com", "refunded")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.svc.ListByClient(ctx, "nobody", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestBook_ConcurrentDistinctClients(t *testing.T) {
	f := newFixture(t)
	const capacity, attempts = 5, 40
	class := f.class(t, capacity)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), class.ID, "Client", fmt.Sprintf("client%d@example.com", i))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var confirmed, full int
	for err := range results {
		switch {
		case err == nil:
			confirmed++
		case apperrors.HasCode(err, apperrors.CodeClassFull):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, capacity, confirmed)
	assert.Equal(t, attempts-capacity, full)
	assert.Equal(t, 0, f.assertInvariant(t, class.ID).AvailableSpots)
}

func TestBook_ConcurrentSameClient(t *testing.T) {
	f := newFixture(t)
	const attempts = 25
	class := f.class(t, 10)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), class.ID, "Client A", "a@example.com")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var confirmed, duplicate int
	for err := range results {
		switch {
		case err == nil:
			confirmed++
		case apperrors.HasCode(err, apperrors.CodeDuplicateBooking):
			duplicate++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, confirmed)
	assert.Equal(t, attempts-1, duplicate)
	assert.Equal(t, 9, f.assertInvariant(t, class.ID).AvailableSpots)
}

// failingClassRepository simulates a store outage on the decrement.
type failingClassRepository struct {
	classrepository.ClassRepository
	err error
}

func (r *failingClassRepository) AdjustAvailability(ctx context.Context, id string, delta int) (*model.FitnessClass, error) {
	return nil, r.err
}

func TestBook_StorageFault(t *testing.T) {
	f := newFixture(t)
	class := f.class(t, 2)
	f.svc.classes = &failingClassRepository{ClassRepository: f.store.Classes(), err: errors.New("connection reset")}

	_, err := f.svc.Book(context.Background(), class.ID, "Ana", "ana@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorage))
	assert.Equal(t, 2, f.assertInvariant(t, class.ID).AvailableSpots)
}

func TestBook_CapacityErrorNeverLeaks(t *testing.T) {
	f := newFixture(t)
	class := f.class(t, 2)
	f.svc.classes = &failingClassRepository{ClassRepository: f.store.Classes(), err: classeserrors.ErrCapacityExceeded}

	_, err := f.svc.Book(context.Background(), class.ID, "Ana", "ana@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeClassFull))
	assert.False(t, errors.Is(err, classeserrors.ErrCapacityExceeded))
}

type stalledPublisher struct {
	release chan struct{}
	done    chan struct{}
}

func (p *stalledPublisher) Publish(context.Context, events.Event) error {
	<-p.release
	close(p.done)
	return errors.New("broker timed out")
}

func (p *stalledPublisher) Close() error { return nil }

func TestBook_SlowBrokerDoesNotDelayOrFailBooking(t *testing.T) {
	f := newFixture(t)
	stalled := &stalledPublisher{release: make(chan struct{}), done: make(chan struct{})}
	async := events.NewAsync(stalled, 4, logger.Discard())
	f.svc.publisher = async

	class := f.class(t, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	booking, err := f.svc.Book(ctx, class.ID, "Client A", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, config.Confirmed, booking.Status)
	assert.NoError(t, ctx.Err(), "booking returned while the broker was still stalled")
	assert.Equal(t, 0, f.assertInvariant(t, class.ID).AvailableSpots)

	close(stalled.release)
	require.NoError(t, async.Close())
	<-stalled.done

	stored, err := f.svc.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, config.Confirmed, stored.Status, "a failed delivery never undoes the booking")
}
