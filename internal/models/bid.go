// internal/models/bid.go
package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bid is a fleet's offer on a ride. It only exists inside its ride.
type Bid struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FleetID   string             `bson:"fleetId" json:"fleetId"`
	BidAmount float64            `bson:"bidAmount" json:"bidAmount"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

var ErrFleetIDRequired = errors.New("fleetId cannot be empty")

// NewBid validates the fleet and assigns a fresh identifier.
func NewBid(fleetID string, amount float64, now time.Time) (Bid, error) {
	if strings.TrimSpace(fleetID) == "" {
		return Bid{}, ErrFleetIDRequired
	}
	return Bid{
		ID:        primitive.NewObjectID(),
		FleetID:   fleetID,
		BidAmount: amount,
		CreatedAt: now,
	}, nil
}
