package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	return &MongoBookingRepo{coll: database.DB().Collection("bookings")}
}

// Create persists a new booking document. The unique partial index on
// (stylist_id, scheduled_date, scheduled_time) over active statuses turns the
// concurrent same-slot race into a duplicate-key error here.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctxWithTimeout, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// Delete removes a booking record.
func (repo *MongoBookingRepo) Delete(ctx context.Context, bookingID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.DeleteOne(ctxWithTimeout, bson.M{"id": bookingID}); err != nil {
		return fmt.Errorf("error deleting booking %s: %w", bookingID, err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// GetByOrderID retrieves the most recent booking referencing a payment order ID.
func (repo *MongoBookingRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var booking models.Booking
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"payment_order_id": orderID}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking for order %s: %w", orderID, err)
	}
	return &booking, nil
}

// ListForStylistDate returns a stylist's bookings on a date filtered to the given statuses.
func (repo *MongoBookingRepo) ListForStylistDate(ctx context.Context, stylistID, date string, statuses []string) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"stylist_id":     stylistID,
		"scheduled_date": date,
		"status":         bson.M{"$in": statuses},
	}
	cursor, err := repo.coll.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings for stylist %s on %s: %w", stylistID, date, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// CountForStylistDate counts a stylist's bookings on a date in the given statuses.
func (repo *MongoBookingRepo) CountForStylistDate(ctx context.Context, stylistID, date string, statuses []string) (int, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"stylist_id":     stylistID,
		"scheduled_date": date,
		"status":         bson.M{"$in": statuses},
	}
	count, err := repo.coll.CountDocuments(ctxWithTimeout, filter)
	if err != nil {
		return 0, fmt.Errorf("error counting bookings for stylist %s on %s: %w", stylistID, date, err)
	}
	return int(count), nil
}

// ListForUser returns a user's bookings, newest first.
func (repo *MongoBookingRepo) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"user_id": userID})
}

// ListForStylist returns a stylist's bookings, newest first.
func (repo *MongoBookingRepo) ListForStylist(ctx context.Context, stylistID string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"stylist_id": stylistID})
}

func (repo *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.coll.Find(ctxWithTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// UpdateIfStatus applies field updates only while the booking is in one of
// fromStatuses. FindOneAndUpdate gives the atomic read-modify-write each
// booking transition needs.
func (repo *MongoBookingRepo) UpdateIfStatus(ctx context.Context, bookingID string, fromStatuses []string, set map[string]interface{}) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set["updated_at"] = time.Now()
	filter := bson.M{
		"id":     bookingID,
		"status": bson.M{"$in": fromStatuses},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := repo.coll.FindOneAndUpdate(ctxWithTimeout, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish a missing booking from a lost status race.
			if _, getErr := repo.GetByID(ctx, bookingID); errors.Is(getErr, ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, ErrStaleStatus
		}
		return nil, fmt.Errorf("error transitioning booking %s: %w", bookingID, err)
	}
	return &updated, nil
}

// EnsureIndexes creates booking indexes: the active-slot uniqueness guard plus
// the secondary lookups by stylist/date and by payment order id.
func (repo *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "stylist_id", Value: 1},
				{Key: "scheduled_date", Value: 1},
				{Key: "scheduled_time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": models.ActiveStatuses},
				}),
		},
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "payment_order_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("error creating booking indexes: %w", err)
	}
	return nil
}
