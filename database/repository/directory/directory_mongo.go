package directoryRepo

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

// MongoDirectoryRepo implements DirectoryRepository using MongoDB.
type MongoDirectoryRepo struct {
	stylistColl *mongo.Collection
	userColl    *mongo.Collection
}

// NewMongoDirectoryRepo constructs a new instance of MongoDirectoryRepo.
func NewMongoDirectoryRepo() DirectoryRepository {
	db := database.DB()
	return &MongoDirectoryRepo{
		stylistColl: db.Collection("stylists"),
		userColl:    db.Collection("users"),
	}
}

// GetStylist retrieves the engine-facing projection of a stylist record.
func (repo *MongoDirectoryRepo) GetStylist(ctx context.Context, stylistID string) (*models.StylistProfile, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	proj := bson.M{"id": 1, "display_name": 1, "rates": 1, "currency": 1, "fcm_token": 1}
	opts := options.FindOne().SetProjection(proj)

	var stylist models.StylistProfile
	err := repo.stylistColl.FindOne(ctxWithTimeout, bson.M{"id": stylistID}, opts).Decode(&stylist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching stylist %s: %w", stylistID, err)
	}
	return &stylist, nil
}

// GetUser retrieves the engine-facing projection of a user record.
func (repo *MongoDirectoryRepo) GetUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	proj := bson.M{"id": 1, "display_name": 1, "fcm_token": 1}
	opts := options.FindOne().SetProjection(proj)

	var user models.UserProfile
	err := repo.userColl.FindOne(ctxWithTimeout, bson.M{"id": userID}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching user %s: %w", userID, err)
	}
	return &user, nil
}
