// Package repository persists rides and their embedded bids.
package repository

import (
	"context"
	"errors"

	"ride-marketplace-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrRideNotFound = errors.New("ride not found")
	ErrBidNotFound  = errors.New("bid not found on ride")
)

// RideFilter narrows List. The zero value matches every ride.
type RideFilter struct {
	ClientID string
}

// RideStore is the persistence contract used by the ride service.
// Implementations return ErrRideNotFound / ErrBidNotFound for missing
// entities and wrap every other failure.
type RideStore interface {
	// Create persists ride and sets its ID.
	Create(ctx context.Context, ride *models.Ride) error
	// List returns matching rides in insertion order.
	List(ctx context.Context, filter RideFilter) ([]models.Ride, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	// PushBid appends bid atomically and returns the updated ride.
	PushBid(ctx context.Context, rideID primitive.ObjectID, bid models.Bid) (*models.Ride, error)
	// SetAcceptedBid records bidID as accepted only if the ride still holds
	// that bid, and returns the updated ride.
	SetAcceptedBid(ctx context.Context, rideID, bidID primitive.ObjectID) (*models.Ride, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Ping(ctx context.Context) error
}
