package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitstudio/pkg/kafka"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	messages []kafka.Message
	err      error
	ctxErr   error
}

func (f *fakeProducer) Publish(ctx context.Context, msg kafka.Message) error {
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestKafkaPublisher_BuildsKeyedMessage(t *testing.T) {
	fake := &fakeProducer{}
	pub := &KafkaPublisher{producer: fake, log: logger.Discard()}

	var reqCtx context.Context
	h := middleware.RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqCtx = r.Context()
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	ctx, cancel := context.WithCancel(reqCtx)
	cancel()

	occurred := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	err := pub.Publish(ctx, Event{
		Type:       BookingConfirmed,
		ClassID:    "class-1",
		BookingID:  "booking-1",
		Available:  Spots(4),
		OccurredAt: occurred,
	})
	require.NoError(t, err)
	require.NoError(t, fake.ctxErr, "publish must not inherit the caller's cancellation")
	require.Len(t, fake.messages, 1)

	msg := fake.messages[0]
	assert.Equal(t, "class-1", msg.Key)
	assert.Equal(t, BookingConfirmed, msg.GetEventType())
	assert.Equal(t, "req-42", msg.Headers[kafka.HeaderCorrelationID])
	assert.Equal(t, occurred, msg.Timestamp)

	var decoded Event
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "booking-1", decoded.BookingID)
	require.NotNil(t, decoded.Available)
	assert.Equal(t, 4, *decoded.Available)
}

func TestKafkaPublisher_WrapsErrors(t *testing.T) {
	boom := errors.New("broker down")
	pub := &KafkaPublisher{producer: &fakeProducer{err: boom}, log: logger.Discard()}

	err := pub.Publish(context.Background(), Event{Type: ClassCreated, ClassID: "c"})
	assert.ErrorIs(t, err, boom)
}
