// Package events announces studio state changes after they commit.
package events

import (
	"context"
	"time"
)

const (
	ClassCreated     = "class.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
)

const SchemaVersion = "1"

// Event is keyed by class ID so one class's history stays ordered.
type Event struct {
	Type        string    `json:"type"`
	ClassID     string    `json:"class_id"`
	BookingID   string    `json:"booking_id,omitempty"`
	ClientEmail string    `json:"client_email,omitempty"`
	Status      string    `json:"status,omitempty"`
	Available   *int      `json:"available_spots,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Spots is a helper for the optional Available field.
func Spots(n int) *int {
	return &n
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
