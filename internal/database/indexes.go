// internal/database/indexes.go
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RideIndexes backs the clientId filter on list and the bids._id match
// used when accepting a bid.
func RideIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index().SetName("clientId_1"),
		},
		{
			Keys:    bson.D{{Key: "bids._id", Value: 1}},
			Options: options.Index().SetName("bids_id_1"),
		},
	}
}

// EnsureRideIndexes creates the ride indexes. Creating an existing index is a no-op.
func EnsureRideIndexes(ctx context.Context, coll *mongo.Collection) error {
	names, err := coll.Indexes().CreateMany(ctx, RideIndexes())
	if err != nil {
		return fmt.Errorf("create ride indexes on %s: %w", coll.Name(), err)
	}
	if len(names) != len(RideIndexes()) {
		return fmt.Errorf("create ride indexes on %s: expected %d indexes, got %d", coll.Name(), len(RideIndexes()), len(names))
	}
	return nil
}
