// Package storage selects the repositories and transaction manager for the
// configured store driver.
package storage

import (
	"context"
	"fmt"

	bookingrepository "fitstudio/internal/bookings/repository"
	classrepository "fitstudio/internal/classes/repository"
	"fitstudio/internal/health"
	"fitstudio/internal/storage/memory"
	"fitstudio/pkg/config"
	"fitstudio/pkg/db"
	mongodb "fitstudio/pkg/db/mongo"
	"fitstudio/pkg/db/postgres"
)

type Stores struct {
	Classes  classrepository.ClassRepository
	Bookings bookingrepository.BookingRepository
	Tx       db.TransactionManager
	Pinger   health.Pinger
}

// Open expects cfg.Connect to have run for the mongo and postgres drivers.
func Open(cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		if cfg.Client.Mongo == nil {
			return nil, fmt.Errorf("mongo client is not connected")
		}
		return &Stores{
			Classes:  classrepository.NewMongoClassRepository(cfg),
			Bookings: bookingrepository.NewMongoBookingRepository(cfg),
			Tx:       mongodb.NewTransactionManager(cfg.Client.Mongo),
			Pinger: health.PingFunc(func(ctx context.Context) error {
				return cfg.Client.Mongo.Ping(ctx, nil)
			}),
		}, nil

	case config.StorePostgres:
		if cfg.Client.Postgres == nil {
			return nil, fmt.Errorf("postgres client is not connected")
		}
		return &Stores{
			Classes:  classrepository.NewPostgresClassRepository(cfg),
			Bookings: bookingrepository.NewPostgresBookingRepository(cfg),
			Tx:       postgres.NewTransactionManager(cfg.Client.Postgres),
			Pinger:   health.PingFunc(cfg.Client.Postgres.PingContext),
		}, nil

	case config.StoreMemory:
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
}

func NewMemory() *Stores {
	store := memory.NewStore()
	return &Stores{
		Classes:  store.Classes(),
		Bookings: store.Bookings(),
		Tx:       store,
		Pinger:   store,
	}
}
