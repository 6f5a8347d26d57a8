package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingrepository "fitstudio/internal/bookings/repository"
	classrepository "fitstudio/internal/classes/repository"
	"fitstudio/internal/migrations/mongo/validators"
	"fitstudio/pkg/config"
	"fitstudio/pkg/logger"
)

const ActiveBookingIndex = "uniq_active_booking_per_client"

var (
	ClassesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "class_type", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "instructor", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_time", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "class_id", Value: 1}, {Key: "client_email", Value: 1}},
			Options: options.Index().
				SetName(ActiveBookingIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{
			{Key: "client_email", Value: 1},
			{Key: "booking_time", Value: -1},
			{Key: "_id", Value: -1},
		}},
		{Keys: bson.D{{Key: "class_id", Value: 1}, {Key: "active", Value: 1}}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, policy config.StudioPolicy, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		classrepository.CollectionName: {
			Indexes:   ClassesIndexes,
			Validator: validators.ClassValidator(policy.ClassAllowedStatuses),
		},
		bookingrepository.CollectionName: {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator(policy.BookingAllowedStatuses),
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All Mongo migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
