package config

import "time"

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

const (
	DefaultStoreDriver = StoreMongo

	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "fitstudio"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPostgresMaxOpenConns = 20

	DefaultPort = "8080"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 10 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingEventTopic = "fitstudio.bookings"
	DefaultAMQPExchange      = "fitstudio.events"

	DefaultStatusRefreshInterval = 1 * time.Minute
)

// Class statuses
const (
	ClassScheduled = "scheduled"
	ClassActive    = "active"
	ClassCompleted = "completed"
	ClassCancelled = "cancelled"
)

// Booking statuses
const (
	Pending   = "pending"
	Confirmed = "confirmed"
	Cancelled = "cancelled"
	Completed = "completed"
)
