// Package memory is an in-process store for local runs and tests. A single
// mutex serializes every transaction, and a failed transaction restores the
// snapshot taken when it began.
package memory

import (
	"context"
	"sync"
	"time"

	"fitstudio/pkg/db"
	"fitstudio/pkg/model"

	"github.com/google/uuid"
)

type txKey struct{}

type Store struct {
	mu       sync.Mutex
	classes  map[string]*model.FitnessClass
	bookings map[string]*model.Booking
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		classes:  make(map[string]*model.FitnessClass),
		bookings: make(map[string]*model.Booking),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Classes() *ClassRepository {
	return &ClassRepository{store: s}
}

func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{store: s}
}

func (s *Store) inTransaction(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock acquires the store unless ctx already runs inside one of its
// transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTransaction(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	if s.inTransaction(ctx) {
		return fn(ctx)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	classes, bookings := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.classes, s.bookings = classes, bookings
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[string]*model.FitnessClass, map[string]*model.Booking) {
	classes := make(map[string]*model.FitnessClass, len(s.classes))
	for id, c := range s.classes {
		cp := *c
		classes[id] = &cp
	}
	bookings := make(map[string]*model.Booking, len(s.bookings))
	for id, b := range s.bookings {
		cp := *b
		bookings[id] = &cp
	}
	return classes, bookings
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func newID() string {
	return uuid.New().String()
}

var _ db.TransactionManager = (*Store)(nil)

// Ping always succeeds; it lets the store back the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
