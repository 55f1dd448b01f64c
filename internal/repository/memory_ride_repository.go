// internal/repository/memory_ride_repository.go
package repository

import (
	"context"
	"sync"
	"time"

	"ride-marketplace-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRideRepository keeps rides in process memory. It backs local runs
// (store.driver: memory) and tests; data is lost on restart.
type MemoryRideRepository struct {
	mu    sync.RWMutex
	rides map[primitive.ObjectID]*models.Ride
	order []primitive.ObjectID
}

var _ RideStore = (*MemoryRideRepository)(nil)

func NewMemoryRideRepository() *MemoryRideRepository {
	return &MemoryRideRepository{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (m *MemoryRideRepository) Create(_ context.Context, ride *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	ride.Normalize()
	stored := ride.Clone()
	m.rides[ride.ID] = &stored
	m.order = append(m.order, ride.ID)
	return nil
}

func (m *MemoryRideRepository) List(_ context.Context, filter RideFilter) ([]models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rides := make([]models.Ride, 0, len(m.order))
	for _, id := range m.order {
		ride := m.rides[id]
		if filter.ClientID != "" && ride.ClientID != filter.ClientID {
			continue
		}
		rides = append(rides, ride.Clone())
	}
	return rides, nil
}

func (m *MemoryRideRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ride, ok := m.rides[id]
	if !ok {
		return nil, ErrRideNotFound
	}
	out := ride.Clone()
	return &out, nil
}

func (m *MemoryRideRepository) PushBid(_ context.Context, rideID primitive.ObjectID, bid models.Bid) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ride, ok := m.rides[rideID]
	if !ok {
		return nil, ErrRideNotFound
	}
	ride.Bids = append(ride.Bids, bid)
	ride.UpdatedAt = time.Now().UTC()

	out := ride.Clone()
	return &out, nil
}

func (m *MemoryRideRepository) SetAcceptedBid(_ context.Context, rideID, bidID primitive.ObjectID) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ride, ok := m.rides[rideID]
	if !ok {
		return nil, ErrRideNotFound
	}
	if _, ok := ride.FindBid(bidID); !ok {
		return nil, ErrBidNotFound
	}
	accepted := bidID
	ride.AcceptedBid = &accepted
	ride.UpdatedAt = time.Now().UTC()

	out := ride.Clone()
	return &out, nil
}

func (m *MemoryRideRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rides[id]; !ok {
		return ErrRideNotFound
	}
	delete(m.rides, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRideRepository) Ping(context.Context) error { return nil }
