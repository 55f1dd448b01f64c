// Package rides implements the marketplace operations: clients request
// rides, fleets bid on them, and clients accept one bid per ride.
package rides

import (
	"context"
	"errors"
	"time"

	"ride-marketplace-api-server/internal/apperror"
	"ride-marketplace-api-server/internal/models"
	"ride-marketplace-api-server/internal/o11y"
	"ride-marketplace-api-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	MsgRideNotFound  = "Ride not found"
	MsgBidNotFound   = "Bid not found on this ride"
	MsgInvalidRideID = "invalid ride id"
)

type RideRequest struct {
	ClientID        string
	PickupLocation  string
	DropoffLocation string
	ProposedPrice   float64
}

type BidRequest struct {
	FleetID   string
	BidAmount float64
}

type Service struct {
	store   repository.RideStore
	metrics *o11y.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewService wires the ride operations to a store. metrics may be nil.
func NewService(store repository.RideStore, metrics *o11y.Metrics) *Service {
	return &Service{
		store:   store,
		metrics: metrics,
		tracer:  otel.Tracer("ride-marketplace/rides"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) RequestRide(ctx context.Context, req RideRequest) (ride *models.Ride, err error) {
	ctx, span := s.tracer.Start(ctx, "rides.RequestRide", trace.WithAttributes(
		attribute.String("client.id", req.ClientID),
	))
	defer func() { endSpan(span, err) }()

	newRide, err := models.NewRide(req.ClientID, req.PickupLocation, req.DropoffLocation, req.ProposedPrice, s.now())
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	if err := s.store.Create(ctx, &newRide); err != nil {
		return nil, apperror.Internal(err, "Failed to create ride request")
	}

	s.metrics.IncRidesRequested()
	return &newRide, nil
}

// ListRides returns every ride, or only the rides of clientID when set.
func (s *Service) ListRides(ctx context.Context, clientID string) (rides []models.Ride, err error) {
	ctx, span := s.tracer.Start(ctx, "rides.ListRides")
	defer func() { endSpan(span, err) }()

	rides, err = s.store.List(ctx, repository.RideFilter{ClientID: clientID})
	if err != nil {
		return nil, apperror.Internal(err, "Failed to list ride requests")
	}
	if rides == nil {
		rides = []models.Ride{}
	}
	return rides, nil
}

func (s *Service) GetRide(ctx context.Context, rideID string) (ride *models.Ride, err error) {
	ctx, span := s.tracer.Start(ctx, "rides.GetRide", rideAttr(rideID))
	defer func() { endSpan(span, err) }()

	id, err := parseRideID(rideID)
	if err != nil {
		return nil, err
	}

	ride, err = s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Failed to load ride")
	}
	return ride, nil
}

// SubmitBid appends a bid to the ride. An empty fleetId is rejected before
// the store is touched.
func (s *Service) SubmitBid(ctx context.Context, rideID string, req BidRequest) (ride *models.Ride, err error) {
	ctx, span := s.tracer.Start(ctx, "rides.SubmitBid", rideAttr(rideID), trace.WithAttributes(
		attribute.String("fleet.id", req.FleetID),
	))
	defer func() { endSpan(span, err) }()

	bid, err := models.NewBid(req.FleetID, req.BidAmount, s.now())
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	id, err := parseRideID(rideID)
	if err != nil {
		return nil, err
	}

	ride, err = s.store.PushBid(ctx, id, bid)
	if err != nil {
		return nil, translate(err, "Failed to submit bid")
	}

	s.metrics.IncBidsSubmitted()
	return ride, nil
}

func (s *Service) ListBids(ctx context.Context, rideID string) (bids []models.Bid, err error) {
	ctx, span := s.tracer.Start(ctx, "rides.ListBids", rideAttr(rideID))
	defer func() { endSpan(span, err) }()

	id, err := parseRideID(rideID)
	if err != nil {
		return nil, err
	}

	ride, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Failed to load bids")
	}
	ride.Normalize()
	return ride.Bids, nil
}

// AcceptBid marks bidID as the ride's accepted bid. Accepting again with
// another bid replaces the previous choice.
func (s *Service) AcceptBid(ctx context.Context, rideID, bidID string) (ride *models.Ride, err error) {
	ctx, span := s.tracer.Start(ctx, "rides.AcceptBid", rideAttr(rideID), trace.WithAttributes(
		attribute.String("bid.id", bidID),
	))
	defer func() { endSpan(span, err) }()

	id, err := parseRideID(rideID)
	if err != nil {
		return nil, err
	}

	ride, err = s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Failed to accept bid")
	}

	// A bid id that is not even an ObjectID cannot be on the ride.
	bid, err := primitive.ObjectIDFromHex(bidID)
	if err != nil {
		return nil, apperror.NotFound(MsgBidNotFound)
	}
	if _, ok := ride.FindBid(bid); !ok {
		return nil, apperror.NotFound(MsgBidNotFound)
	}

	ride, err = s.store.SetAcceptedBid(ctx, id, bid)
	if err != nil {
		return nil, translate(err, "Failed to accept bid")
	}

	s.metrics.IncBidsAccepted()
	return ride, nil
}

// DeleteRide removes the ride together with its bids.
func (s *Service) DeleteRide(ctx context.Context, rideID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "rides.DeleteRide", rideAttr(rideID))
	defer func() { endSpan(span, err) }()

	id, err := parseRideID(rideID)
	if err != nil {
		return err
	}

	if err = s.store.Delete(ctx, id); err != nil {
		return translate(err, "Failed to delete ride request")
	}

	s.metrics.IncRidesDeleted()
	return nil
}

// Ping checks that the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func parseRideID(rideID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(rideID)
	if err != nil {
		return primitive.NilObjectID, apperror.Validationf("%s %q", MsgInvalidRideID, rideID)
	}
	return id, nil
}

// translate maps repository errors to apperror kinds.
func translate(err error, internalMsg string) error {
	switch {
	case errors.Is(err, repository.ErrRideNotFound):
		return apperror.NotFound(MsgRideNotFound)
	case errors.Is(err, repository.ErrBidNotFound):
		return apperror.NotFound(MsgBidNotFound)
	default:
		return apperror.Internal(err, internalMsg)
	}
}

func rideAttr(rideID string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("ride.id", rideID))
}

func endSpan(span trace.Span, err error) {
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
