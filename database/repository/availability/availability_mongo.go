package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stylora/database"
	"stylora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAvailabilityRepo implements AvailabilityRepository using MongoDB.
type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new instance of MongoAvailabilityRepo.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	return &MongoAvailabilityRepo{coll: database.DB().Collection("availability")}
}

// Get retrieves the availability record for a stylist.
func (repo *MongoAvailabilityRepo) Get(ctx context.Context, stylistID string) (*models.Availability, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var availability models.Availability
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"stylist_id": stylistID}).Decode(&availability)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching availability for stylist %s: %w", stylistID, err)
	}
	return &availability, nil
}

// Upsert writes the full availability record for a stylist.
func (repo *MongoAvailabilityRepo) Upsert(ctx context.Context, availability *models.Availability) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"stylist_id": availability.StylistID}
	update := bson.M{"$set": availability}
	opts := options.Update().SetUpsert(true)
	if _, err := repo.coll.UpdateOne(ctxWithTimeout, filter, update, opts); err != nil {
		return fmt.Errorf("error upserting availability for stylist %s: %w", availability.StylistID, err)
	}
	return nil
}

// EnsureIndexes creates the unique stylist index on the availability collection.
func (repo *MongoAvailabilityRepo) EnsureIndexes(ctx context.Context) error {
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "stylist_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("error creating availability indexes: %w", err)
	}
	return nil
}
