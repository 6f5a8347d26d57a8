package events

import (
	"context"
	"errors"
	"sync"

	"fitstudio/pkg/logger"
)

const DefaultAsyncBuffer = 1024

var (
	ErrQueueFull = errors.New("event queue is full")
	ErrClosed    = errors.New("event publisher is closed")
)

type pending struct {
	ctx   context.Context
	event Event
}

// Async hands events to a background goroutine so callers return as soon as
// the event is queued. Close delivers what is already queued, then closes next.
type Async struct {
	next  Publisher
	queue chan pending
	log   *logger.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsync(next Publisher, buffer int, log *logger.Logger) *Async {
	if buffer <= 0 {
		buffer = DefaultAsyncBuffer
	}
	a := &Async{
		next:  next,
		queue: make(chan pending, buffer),
		log:   log,
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish never blocks. The queued ctx keeps the caller's values (request ID)
// but not its cancellation.
func (a *Async) Publish(ctx context.Context, event Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- pending{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for p := range a.queue {
		if err := a.next.Publish(p.ctx, p.event); err != nil {
			a.log.Warn("Failed to deliver event",
				"type", p.event.Type,
				"class_id", p.event.ClassID,
				"booking_id", p.event.BookingID,
				"error", err,
			)
		}
	}
}

func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	return a.next.Close()
}
