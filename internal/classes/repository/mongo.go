package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	classeserrors "fitstudio/internal/classes/errors"
	"fitstudio/pkg/config"
	mongodb "fitstudio/pkg/db/mongo"
	"fitstudio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoClassRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoClassRepository(cfg *config.Config) ClassRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoClassRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoClassRepository) Create(ctx context.Context, class *model.FitnessClass) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	class.ID = ""
	class.CreatedAt = now
	class.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, class)
	if err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		class.ID = oid.Hex()
	}
	return nil
}

func (r *mongoClassRepository) FindByID(ctx context.Context, id string) (*model.FitnessClass, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", classeserrors.ErrInvalidID, id)
	}

	var class model.FitnessClass
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&class)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, classeserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find class: %w", err)
	}

	return &class, nil
}

func (r *mongoClassRepository) FindUpcoming(ctx context.Context, filter model.ClassFilter, now time.Time) ([]*model.FitnessClass, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	from := now
	if filter.From != nil && filter.From.After(now) {
		from = *filter.From
	}
	startRange := bson.M{"$gte": from}
	if filter.To != nil {
		startRange["$lte"] = *filter.To
	}

	query := bson.M{
		"start_time": startRange,
		"status":     bson.M{"$ne": config.ClassCancelled},
	}
	if filter.ClassType != "" {
		query["class_type"] = filter.ClassType
	}
	if filter.Instructor != "" {
		query["instructor"] = filter.Instructor
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find upcoming classes: %w", err)
	}
	defer cursor.Close(ctx)

	classes := make([]*model.FitnessClass, 0)
	if err = cursor.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("failed to decode classes: %w", err)
	}

	return classes, nil
}

func (r *mongoClassRepository) AdjustAvailability(ctx context.Context, id string, delta int) (*model.FitnessClass, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", classeserrors.ErrInvalidID, id)
	}

	next := bson.M{"$add": bson.A{"$available_spots", delta}}
	filter := bson.M{
		"_id": objectID,
		"$expr": bson.M{"$and": bson.A{
			bson.M{"$gte": bson.A{next, 0}},
			bson.M{"$lte": bson.A{next, "$capacity"}},
		}},
	}
	update := bson.M{
		"$inc": bson.M{"available_spots": delta},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var class model.FitnessClass
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&class)
	if err == nil {
		return &class, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to adjust availability: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to check class existence: %w", err)
	}
	if count == 0 {
		return nil, classeserrors.ErrNotFound
	}
	return nil, classeserrors.ErrCapacityExceeded
}

func (r *mongoClassRepository) ExistsOverlappingByName(ctx context.Context, name string, start, end time.Time) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"name":       name,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
		"status":     bson.M{"$ne": config.ClassCancelled},
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping classes: %w", err)
	}
	return count > 0, nil
}

func (r *mongoClassRepository) RefreshStatuses(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	stamp := now.UTC().Truncate(time.Millisecond)

	completed, err := r.collection.UpdateMany(ctx,
		bson.M{
			"status":   bson.M{"$in": bson.A{config.ClassScheduled, config.ClassActive}},
			"end_time": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": config.ClassCompleted, "updated_at": stamp}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to complete ended classes: %w", err)
	}

	started, err := r.collection.UpdateMany(ctx,
		bson.M{
			"status":     config.ClassScheduled,
			"start_time": bson.M{"$lte": now},
			"end_time":   bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"status": config.ClassActive, "updated_at": stamp}},
	)
	if err != nil {
		return completed.ModifiedCount, fmt.Errorf("failed to activate started classes: %w", err)
	}

	return completed.ModifiedCount + started.ModifiedCount, nil
}
