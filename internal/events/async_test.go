package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"fitstudio/pkg/logger"
	"fitstudio/pkg/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingPublisher holds every Publish until release is closed.
type blockingPublisher struct {
	release chan struct{}
	delay   time.Duration

	mu     sync.Mutex
	events []Event
	reqIDs []string
	closed bool
}

func newBlockingPublisher() *blockingPublisher {
	return &blockingPublisher{release: make(chan struct{})}
}

func (p *blockingPublisher) Publish(ctx context.Context, event Event) error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	} else {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.reqIDs = append(p.reqIDs, middleware.RequestID(ctx))
	return nil
}

func (p *blockingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *blockingPublisher) delivered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestAsync_PublishDoesNotWaitForDelivery(t *testing.T) {
	next := newBlockingPublisher()
	async := NewAsync(next, 8, logger.Discard())

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), middleware.RequestIDKey, "req-1"))
	start := time.Now()
	require.NoError(t, async.Publish(ctx, Event{Type: BookingConfirmed, ClassID: "c1"}))
	cancel()
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 0, next.delivered())

	close(next.release)
	require.NoError(t, async.Close())

	assert.Equal(t, 1, next.delivered(), "Close drains queued events")
	assert.Equal(t, []string{"req-1"}, next.reqIDs, "request values survive the caller's cancellation")
	assert.True(t, next.closed)
	assert.ErrorIs(t, async.Publish(context.Background(), Event{Type: ClassCreated}), ErrClosed)
	assert.NoError(t, async.Close())
}

func TestAsync_FullQueueRejects(t *testing.T) {
	next := newBlockingPublisher()
	async := NewAsync(next, 1, logger.Discard())
	defer func() {
		close(next.release)
		_ = async.Close()
	}()

	// The worker takes the first event and blocks; the second fills the buffer.
	require.NoError(t, async.Publish(context.Background(), Event{Type: ClassCreated, ClassID: "c1"}))
	require.Eventually(t, func() bool { return len(async.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, async.Publish(context.Background(), Event{Type: ClassCreated, ClassID: "c2"}))

	assert.ErrorIs(t, async.Publish(context.Background(), Event{Type: ClassCreated, ClassID: "c3"}), ErrQueueFull)
}

func TestFanout_PublishesConcurrently(t *testing.T) {
	a := &blockingPublisher{delay: 300 * time.Millisecond}
	b := &blockingPublisher{delay: 300 * time.Millisecond}

	start := time.Now()
	require.NoError(t, Fanout{a, b}.Publish(context.Background(), Event{Type: BookingConfirmed, ClassID: "c1"}))

	assert.Less(t, time.Since(start), 550*time.Millisecond)
	assert.Equal(t, 1, a.delivered())
	assert.Equal(t, 1, b.delivered())
}
