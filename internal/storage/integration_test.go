//go:build integration

package storage_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	bookingservice "fitstudio/internal/bookings/service"
	bookingvalidator "fitstudio/internal/bookings/validator"
	classservice "fitstudio/internal/classes/service"
	classvalidator "fitstudio/internal/classes/validator"
	"fitstudio/internal/events"
	mongoMigration "fitstudio/internal/migrations/mongo"
	postgresMigration "fitstudio/internal/migrations/postgres"
	"fitstudio/internal/storage"
	"fitstudio/pkg/client"
	"fitstudio/pkg/config"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: go test -tags integration ./internal/storage/...
// TEST_MONGO_URI must point at a replica set; TEST_POSTGRES_DSN at an empty database.

func integrationConfig(driver string) *config.Config {
	return &config.Config{
		StoreDriver:          driver,
		MongoDatabaseName:    "fitstudio_test_" + uuid.NewString()[:8],
		MongoConnTimeout:     10 * time.Second,
		PostgresMaxOpenConns: 20,
		ReadTimeout:          10 * time.Second,
		WriteTimeout:         10 * time.Second,
		Studio:               config.DefaultStudioPolicy(),
		Log:                  logger.Discard(),
		Client:               client.NewClient(),
	}
}

func mongoStores(t *testing.T) (*config.Config, *storage.Stores) {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	cfg := integrationConfig(config.StoreMongo)
	cfg.MongoURI = uri
	cfg.Connect()

	ctx := context.Background()
	require.NoError(t, mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Studio, cfg.Log))
	t.Cleanup(func() {
		_ = cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Drop(context.Background())
		cfg.GracefulShutdown()
	})

	stores, err := storage.Open(cfg)
	require.NoError(t, err)
	return cfg, stores
}

func postgresStores(t *testing.T) (*config.Config, *storage.Stores) {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	cfg := integrationConfig(config.StorePostgres)
	cfg.PostgresDSN = dsn
	cfg.Connect()

	ctx := context.Background()
	require.NoError(t, postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Studio, cfg.Log))
	t.Cleanup(func() {
		_, _ = cfg.Client.Postgres.ExecContext(context.Background(), "TRUNCATE bookings, classes")
		cfg.GracefulShutdown()
	})

	stores, err := storage.Open(cfg)
	require.NoError(t, err)
	return cfg, stores
}

func TestIntegration_Mongo(t *testing.T) {
	cfg, stores := mongoStores(t)
	runStoreSuite(t, cfg, stores)
}

func TestIntegration_Postgres(t *testing.T) {
	cfg, stores := postgresStores(t)
	runStoreSuite(t, cfg, stores)
}

func runStoreSuite(t *testing.T, cfg *config.Config, stores *storage.Stores) {
	classes := classservice.NewClassService(stores.Classes, stores.Tx, classvalidator.NewClassValidator(cfg.Studio), events.NopPublisher{}, cfg)
	bookings := bookingservice.NewBookingService(stores.Bookings, stores.Classes, stores.Tx, bookingvalidator.NewBookingValidator(cfg.Studio), events.NopPublisher{}, cfg)
	ctx := context.Background()

	require.NoError(t, stores.Pinger.Ping(ctx))

	newClass := func(t *testing.T, capacity int, offset time.Duration) *model.FitnessClass {
		start := time.Now().UTC().Add(24*time.Hour + offset).Truncate(time.Minute)
		class := &model.FitnessClass{
			Name:       "Spin",
			ClassType:  "cycling",
			Instructor: "Dev-" + uuid.NewString()[:6],
			StartTime:  start,
			EndTime:    start.Add(45 * time.Minute),
			Capacity:   capacity,
		}
		require.NoError(t, classes.Create(ctx, class))
		return class
	}

	t.Run("capacity holds under concurrency", func(t *testing.T) {
		const capacity, clients = 4, 20
		class := newClass(t, capacity, 0)

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			booked int
			codes  = map[string]int{}
		)
		for i := 0; i < clients; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := bookings.Book(ctx, class.ID, "Rider", fmt.Sprintf("rider%d@example.com", i))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					booked++
					return
				}
				codes[apperrors.AsAppError(err).Code]++
			}(i)
		}
		wg.Wait()

		assert.Equal(t, capacity, booked)
		assert.Equal(t, clients-capacity, codes[apperrors.CodeClassFull])

		got, err := classes.GetByID(ctx, class.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.AvailableSpots)
	})

	t.Run("one active booking per client under concurrency", func(t *testing.T) {
		class := newClass(t, 10, 2*time.Hour)

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			booked int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := bookings.Book(ctx, class.ID, "Same", "same@example.com"); err == nil {
					mu.Lock()
					booked++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, booked)
		got, err := classes.GetByID(ctx, class.ID)
		require.NoError(t, err)
		assert.Equal(t, 9, got.AvailableSpots)
	})

	t.Run("cancel releases the spot", func(t *testing.T) {
		class := newClass(t, 1, 4*time.Hour)

		booking, err := bookings.Book(ctx, class.ID, "Ana", "ana@example.com")
		require.NoError(t, err)

		_, err = bookings.Cancel(ctx, booking.ID)
		require.NoError(t, err)

		_, err = bookings.Book(ctx, class.ID, "Ana", "ana@example.com")
		require.NoError(t, err)

		views, err := bookings.ListByClient(ctx, "ana@example.com", "")
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, config.Confirmed, views[0].Status)
		assert.Equal(t, "Spin", views[0].ClassName)
	})
}
