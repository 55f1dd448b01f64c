// internal/models/ride.go
package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ride is a client's transport request. Bids are embedded in the same
// document, in the order they were submitted.
type Ride struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID        string              `bson:"clientId" json:"clientId"`
	PickupLocation  string              `bson:"pickupLocation" json:"pickupLocation"`
	DropoffLocation string              `bson:"dropoffLocation" json:"dropoffLocation"`
	ProposedPrice   float64             `bson:"proposedPrice" json:"proposedPrice"`
	Bids            []Bid               `bson:"bids" json:"bids"`
	AcceptedBid     *primitive.ObjectID `bson:"acceptedBid,omitempty" json:"acceptedBid,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

var (
	ErrClientIDRequired        = errors.New("clientId is required")
	ErrPickupLocationRequired  = errors.New("pickupLocation is required")
	ErrDropoffLocationRequired = errors.New("dropoffLocation is required")
)

// NewRide builds an unsaved ride with an empty bid list and no accepted bid.
func NewRide(clientID, pickup, dropoff string, proposedPrice float64, now time.Time) (Ride, error) {
	switch {
	case strings.TrimSpace(clientID) == "":
		return Ride{}, ErrClientIDRequired
	case strings.TrimSpace(pickup) == "":
		return Ride{}, ErrPickupLocationRequired
	case strings.TrimSpace(dropoff) == "":
		return Ride{}, ErrDropoffLocationRequired
	}

	return Ride{
		ClientID:        clientID,
		PickupLocation:  pickup,
		DropoffLocation: dropoff,
		ProposedPrice:   proposedPrice,
		Bids:            []Bid{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// FindBid returns the bid with the given id, scanning in submission order.
func (r *Ride) FindBid(id primitive.ObjectID) (*Bid, bool) {
	for i := range r.Bids {
		if r.Bids[i].ID == id {
			return &r.Bids[i], true
		}
	}
	return nil, false
}

// Normalize replaces a nil bid list so the ride always renders "bids": [].
func (r *Ride) Normalize() {
	if r.Bids == nil {
		r.Bids = []Bid{}
	}
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Ride) Clone() Ride {
	out := r
	out.Bids = append([]Bid{}, r.Bids...)
	if r.AcceptedBid != nil {
		id := *r.AcceptedBid
		out.AcceptedBid = &id
	}
	return out
}
