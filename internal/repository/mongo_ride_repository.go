// internal/repository/mongo_ride_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ride-marketplace-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRideRepository stores one document per ride with bids embedded inline.
type MongoRideRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ RideStore = (*MongoRideRepository)(nil)

func NewMongoRideRepository(db *mongo.Database, collection string, timeout time.Duration) *MongoRideRepository {
	return &MongoRideRepository{
		coll:    db.Collection(collection),
		timeout: timeout,
	}
}

func (r *MongoRideRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *MongoRideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ride.ID = oid
	}
	return nil
}

func (r *MongoRideRepository) List(ctx context.Context, filter RideFilter) ([]models.Ride, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.ClientID != "" {
		query["clientId"] = filter.ClientID
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []models.Ride
	if err = cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("decode rides: %w", err)
	}

	if rides == nil {
		rides = []models.Ride{}
	}
	for i := range rides {
		rides[i].Normalize()
	}
	return rides, nil
}

func (r *MongoRideRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var ride models.Ride
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("find ride %s: %w", id.Hex(), err)
	}

	ride.Normalize()
	return &ride, nil
}

func (r *MongoRideRepository) PushBid(ctx context.Context, rideID primitive.ObjectID, bid models.Bid) (*models.Ride, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"bids": bid},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": rideID}, update, opts).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("push bid on ride %s: %w", rideID.Hex(), err)
	}

	ride.Normalize()
	return &ride, nil
}

func (r *MongoRideRepository) SetAcceptedBid(ctx context.Context, rideID, bidID primitive.ObjectID) (*models.Ride, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	// Matching on bids._id keeps the accepted bid inside the ride's bid list
	// without a read-modify-write of the whole document.
	filter := bson.M{"_id": rideID, "bids._id": bidID}
	update := bson.M{"$set": bson.M{
		"acceptedBid": bidID,
		"updatedAt":   time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ride)
	if err == nil {
		ride.Normalize()
		return &ride, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("accept bid %s on ride %s: %w", bidID.Hex(), rideID.Hex(), err)
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": rideID})
	if err != nil {
		return nil, fmt.Errorf("check ride %s: %w", rideID.Hex(), err)
	}
	if count == 0 {
		return nil, ErrRideNotFound
	}
	return nil, ErrBidNotFound
}

func (r *MongoRideRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete ride %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return ErrRideNotFound
	}
	return nil
}

func (r *MongoRideRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
