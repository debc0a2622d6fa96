package spotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkly/database"
	"parkly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Business errors surfaced by the booking transaction.
var (
	ErrSpotUnavailable  = errors.New("spot not found or already booked")
	ErrDuplicateSession = errors.New("a confirmed booking for this session already exists")
)

// MongoSpotRepo implements SpotRepository using MongoDB. It owns both the
// spots and bookings collections because the booking transaction writes to
// both atomically.
type MongoSpotRepo struct {
	spotColl    *mongo.Collection
	bookingColl *mongo.Collection
}

// NewMongoSpotRepo creates a new instance of SpotRepository using MongoDB.
func NewMongoSpotRepo() SpotRepository {
	db := database.DB()
	repo := &MongoSpotRepo{
		spotColl:    db.Collection("spots"),
		bookingColl: db.Collection("bookings"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create spot indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoSpotRepo) GetByID(ctx context.Context, id string) (*models.Spot, error) {
	var spot models.Spot
	if err := r.spotColl.FindOne(ctx, bson.M{"id": id}).Decode(&spot); err != nil {
		return nil, fmt.Errorf("failed to fetch spot with id %s: %w", id, err)
	}
	return &spot, nil
}

func (r *MongoSpotRepo) Search(ctx context.Context, lat, lng float64, radiusMeters float64, limit int64) ([]models.Spot, error) {
	filter := bson.M{
		"available": true,
		"location": bson.M{
			"$near": bson.M{
				"$geometry":    models.NewGeoPoint(lat, lng),
				"$maxDistance": radiusMeters,
			},
		},
	}
	cursor, err := r.spotColl.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("spot search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var spots []models.Spot
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, fmt.Errorf("failed to decode spot search results: %w", err)
	}
	return spots, nil
}

func (r *MongoSpotRepo) ListAvailable(ctx context.Context, limit int64) ([]models.Spot, error) {
	cursor, err := r.spotColl.Find(ctx, bson.M{"available": true}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list available spots: %w", err)
	}
	defer cursor.Close(ctx)

	var spots []models.Spot
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, fmt.Errorf("failed to decode spots: %w", err)
	}
	return spots, nil
}

func (r *MongoSpotRepo) Create(ctx context.Context, spot *models.Spot) error {
	if _, err := r.spotColl.InsertOne(ctx, spot); err != nil {
		return fmt.Errorf("failed to create spot: %w", err)
	}
	return nil
}

func (r *MongoSpotRepo) Release(ctx context.Context, id string) error {
	update := bson.M{
		"$set":   bson.M{"available": true},
		"$unset": bson.M{"booked_by": "", "booked_at": ""},
	}
	if _, err := r.spotColl.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to release spot %s: %w", id, err)
	}
	return nil
}

func (r *MongoSpotRepo) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	update := bson.M{"$set": bson.M{"rating": rating, "rating_count": count}}
	if _, err := r.spotColl.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to update rating for spot %s: %w", id, err)
	}
	return nil
}

// BookSpotAtomically performs the one place where true race-safety against
// concurrent bookers is required. The conditional update only matches a spot
// that is still available; MatchedCount == 0 means the spot is gone or was
// taken by someone else, and the whole transaction aborts.
func (r *MongoSpotRepo) BookSpotAtomically(ctx context.Context, spotID, userID string, booking *models.Booking) error {
	client := r.spotColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	now := time.Now()

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{"id": spotID, "available": true}
		update := bson.M{
			"$set": bson.M{
				"available": false,
				"booked_by": userID,
				"booked_at": now,
			},
		}
		res, err := r.spotColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("failed to mark spot unavailable: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrSpotUnavailable
		}

		if _, err := r.bookingColl.InsertOne(sc, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateSession
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrSpotUnavailable) || errors.Is(err, ErrDuplicateSession) {
			return err
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
