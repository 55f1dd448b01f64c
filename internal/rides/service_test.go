package rides

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"ride-marketplace-api-server/internal/apperror"
	"ride-marketplace-api-server/internal/models"
	"ride-marketplace-api-server/internal/o11y"
	"ride-marketplace-api-server/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestService(t *testing.T) (*Service, *o11y.Metrics) {
	t.Helper()
	metrics := o11y.NewMetrics(prometheus.NewRegistry())
	svc := NewService(repository.NewMemoryRideRepository(), metrics)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, metrics
}

func mustRequestRide(t *testing.T, svc *Service) *models.Ride {
	t.Helper()
	ride, err := svc.RequestRide(context.Background(), RideRequest{
		ClientID:        "c1",
		PickupLocation:  "A",
		DropoffLocation: "B",
		ProposedPrice:   20,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	return ride
}

func assertKind(t *testing.T, err error, want apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := apperror.KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}

func TestRequestRide(t *testing.T) {
	svc, metrics := newTestService(t)
	ride := mustRequestRide(t, svc)

	if ride.ID.IsZero() {
		t.Fatalf("expected assigned id")
	}
	if ride.Bids == nil || len(ride.Bids) != 0 {
		t.Fatalf("expected empty bids, got %v", ride.Bids)
	}
	if ride.AcceptedBid != nil {
		t.Fatalf("expected no accepted bid")
	}
	if got := testutil.ToFloat64(metrics.RidesRequested); got != 1 {
		t.Fatalf("rides requested = %v, want 1", got)
	}

	_, err := svc.RequestRide(context.Background(), RideRequest{ClientID: "", PickupLocation: "A", DropoffLocation: "B"})
	assertKind(t, err, apperror.KindValidation)
	if apperror.Message(err) != "clientId is required" {
		t.Fatalf("unexpected message %q", apperror.Message(err))
	}
}

func TestListRides(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rides, err := svc.ListRides(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if rides == nil || len(rides) != 0 {
		t.Fatalf("expected empty list, got %v", rides)
	}

	mustRequestRide(t, svc)
	svc.RequestRide(ctx, RideRequest{ClientID: "c2", PickupLocation: "X", DropoffLocation: "Y", ProposedPrice: 5})

	rides, _ = svc.ListRides(ctx, "")
	if len(rides) != 2 || rides[0].ClientID != "c1" || rides[1].ClientID != "c2" {
		t.Fatalf("unexpected rides %v", rides)
	}

	rides, _ = svc.ListRides(ctx, "c2")
	if len(rides) != 1 || rides[0].ClientID != "c2" {
		t.Fatalf("unexpected filtered rides %v", rides)
	}
}

func TestSubmitBid(t *testing.T) {
	svc, metrics := newTestService(t)
	ctx := context.Background()
	ride := mustRequestRide(t, svc)

	t.Run("empty fleet leaves bids untouched", func(t *testing.T) {
		_, err := svc.SubmitBid(ctx, ride.ID.Hex(), BidRequest{FleetID: "", BidAmount: 0})
		assertKind(t, err, apperror.KindValidation)
		if apperror.Message(err) != "fleetId cannot be empty" {
			t.Fatalf("unexpected message %q", apperror.Message(err))
		}
		bids, _ := svc.ListBids(ctx, ride.ID.Hex())
		if len(bids) != 0 {
			t.Fatalf("expected no bids, got %d", len(bids))
		}
	})

	t.Run("n bids in submission order", func(t *testing.T) {
		fleets := []string{"f1", "f2", "f3", "f4"}
		for i, fleet := range fleets {
			updated, err := svc.SubmitBid(ctx, ride.ID.Hex(), BidRequest{FleetID: fleet, BidAmount: float64(10 + i)})
			if err != nil {
				t.Fatalf("submit bid: %v", err)
			}
			if len(updated.Bids) != i+1 {
				t.Fatalf("expected %d bids, got %d", i+1, len(updated.Bids))
			}
		}

		bids, err := svc.ListBids(ctx, ride.ID.Hex())
		if err != nil {
			t.Fatalf("list bids: %v", err)
		}
		if len(bids) != len(fleets) {
			t.Fatalf("expected %d bids, got %d", len(fleets), len(bids))
		}
		for i, fleet := range fleets {
			if bids[i].FleetID != fleet {
				t.Fatalf("bid %d is %s, want %s", i, bids[i].FleetID, fleet)
			}
		}
		if got := testutil.ToFloat64(metrics.BidsSubmitted); got != float64(len(fleets)) {
			t.Fatalf("bids submitted = %v", got)
		}
	})

	t.Run("malformed ride id", func(t *testing.T) {
		_, err := svc.SubmitBid(ctx, "nonExistentRideId", BidRequest{FleetID: "f1", BidAmount: 20})
		assertKind(t, err, apperror.KindValidation)
	})

	t.Run("absent ride", func(t *testing.T) {
		_, err := svc.SubmitBid(ctx, primitive.NewObjectID().Hex(), BidRequest{FleetID: "f1", BidAmount: 20})
		assertKind(t, err, apperror.KindNotFound)
	})
}

func TestListBids_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListBids(context.Background(), "nonExistentRideId")
	assertKind(t, err, apperror.KindValidation)

	_, err = svc.ListBids(context.Background(), primitive.NewObjectID().Hex())
	assertKind(t, err, apperror.KindNotFound)
	if apperror.Message(err) != MsgRideNotFound {
		t.Fatalf("unexpected message %q", apperror.Message(err))
	}
}

func TestAcceptBid(t *testing.T) {
	svc, metrics := newTestService(t)
	ctx := context.Background()
	ride := mustRequestRide(t, svc)
	ride, _ = svc.SubmitBid(ctx, ride.ID.Hex(), BidRequest{FleetID: "f1", BidAmount: 15})
	ride, _ = svc.SubmitBid(ctx, ride.ID.Hex(), BidRequest{FleetID: "f2", BidAmount: 14})
	first, second := ride.Bids[0].ID, ride.Bids[1].ID

	t.Run("unknown bid leaves acceptance unchanged", func(t *testing.T) {
		for _, bidID := range []string{primitive.NewObjectID().Hex(), "not-an-id"} {
			_, err := svc.AcceptBid(ctx, ride.ID.Hex(), bidID)
			assertKind(t, err, apperror.KindNotFound)
			if apperror.Message(err) != MsgBidNotFound {
				t.Fatalf("unexpected message %q", apperror.Message(err))
			}
		}
		got, _ := svc.GetRide(ctx, ride.ID.Hex())
		if got.AcceptedBid != nil {
			t.Fatalf("acceptedBid must stay unset")
		}
	})

	t.Run("accept and fetch", func(t *testing.T) {
		updated, err := svc.AcceptBid(ctx, ride.ID.Hex(), first.Hex())
		if err != nil {
			t.Fatalf("accept: %v", err)
		}
		if updated.AcceptedBid == nil || *updated.AcceptedBid != first {
			t.Fatalf("expected %s accepted, got %v", first.Hex(), updated.AcceptedBid)
		}
		got, _ := svc.GetRide(ctx, ride.ID.Hex())
		if got.AcceptedBid == nil || *got.AcceptedBid != first {
			t.Fatalf("fetch does not reflect acceptance")
		}
	})

	t.Run("same bid again is idempotent", func(t *testing.T) {
		updated, err := svc.AcceptBid(ctx, ride.ID.Hex(), first.Hex())
		if err != nil || *updated.AcceptedBid != first {
			t.Fatalf("expected idempotent accept, got %v %v", updated, err)
		}
	})

	t.Run("different bid overwrites", func(t *testing.T) {
		updated, err := svc.AcceptBid(ctx, ride.ID.Hex(), second.Hex())
		if err != nil || *updated.AcceptedBid != second {
			t.Fatalf("expected second bid accepted, got %v %v", updated, err)
		}
		if got := testutil.ToFloat64(metrics.BidsAccepted); got != 3 {
			t.Fatalf("bids accepted = %v, want 3", got)
		}
	})

	t.Run("absent ride", func(t *testing.T) {
		_, err := svc.AcceptBid(ctx, primitive.NewObjectID().Hex(), first.Hex())
		assertKind(t, err, apperror.KindNotFound)
		if apperror.Message(err) != MsgRideNotFound {
			t.Fatalf("unexpected message %q", apperror.Message(err))
		}
	})
}

func TestDeleteRide(t *testing.T) {
	svc, metrics := newTestService(t)
	ctx := context.Background()
	ride := mustRequestRide(t, svc)
	svc.SubmitBid(ctx, ride.ID.Hex(), BidRequest{FleetID: "f1", BidAmount: 15})

	if err := svc.DeleteRide(ctx, ride.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := svc.ListBids(ctx, ride.ID.Hex())
	assertKind(t, err, apperror.KindNotFound)
	_, err = svc.GetRide(ctx, ride.ID.Hex())
	assertKind(t, err, apperror.KindNotFound)

	assertKind(t, svc.DeleteRide(ctx, ride.ID.Hex()), apperror.KindNotFound)
	assertKind(t, svc.DeleteRide(ctx, "bad"), apperror.KindValidation)

	if got := testutil.ToFloat64(metrics.RidesDeleted); got != 1 {
		t.Fatalf("rides deleted = %v, want 1", got)
	}
}

// brokenStore fails every call the way a lost database connection would.
type brokenStore struct {
	repository.RideStore
	err error
}

func (b brokenStore) Create(context.Context, *models.Ride) error { return b.err }
func (b brokenStore) List(context.Context, repository.RideFilter) ([]models.Ride, error) {
	return nil, b.err
}
func (b brokenStore) FindByID(context.Context, primitive.ObjectID) (*models.Ride, error) {
	return nil, b.err
}
func (b brokenStore) Delete(context.Context, primitive.ObjectID) error { return b.err }

func TestStoreFailuresAreInternal(t *testing.T) {
	cause := errors.New("server selection timeout")
	svc := NewService(brokenStore{err: cause}, nil)
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()

	_, err := svc.RequestRide(ctx, RideRequest{ClientID: "c1", PickupLocation: "A", DropoffLocation: "B"})
	assertKind(t, err, apperror.KindInternal)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped")
	}

	_, err = svc.ListRides(ctx, "")
	assertKind(t, err, apperror.KindInternal)
	_, err = svc.ListBids(ctx, id)
	assertKind(t, err, apperror.KindInternal)
	_, err = svc.AcceptBid(ctx, id, id)
	assertKind(t, err, apperror.KindInternal)
	assertKind(t, svc.DeleteRide(ctx, id), apperror.KindInternal)
}

type fakeUploader struct {
	key  string
	body []byte
	err  error
}

func (f *fakeUploader) UploadJSON(_ context.Context, key string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key, f.body = key, body
	return "https://cdn.example.com/" + key, nil
}

func TestExportSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ride := mustRequestRide(t, svc)
	svc.SubmitBid(ctx, ride.ID.Hex(), BidRequest{FleetID: "f1", BidAmount: 15})
	mustRequestRide(t, svc)

	up := &fakeUploader{}
	snap, err := svc.ExportSnapshot(ctx, up, "exports")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if snap.Count != 2 {
		t.Fatalf("expected 2 rides, got %d", snap.Count)
	}
	if !strings.HasPrefix(snap.Key, "exports/rides-20240601T120000Z-") || !strings.HasSuffix(snap.Key, ".json") {
		t.Fatalf("unexpected key %q", snap.Key)
	}
	if snap.URL != "https://cdn.example.com/"+snap.Key {
		t.Fatalf("unexpected url %q", snap.URL)
	}

	var exported []models.Ride
	if err := json.Unmarshal(up.body, &exported); err != nil {
		t.Fatalf("snapshot is not json: %v", err)
	}
	if len(exported) != 2 || len(exported[0].Bids) != 1 {
		t.Fatalf("unexpected snapshot %+v", exported)
	}

	_, err = svc.ExportSnapshot(ctx, &fakeUploader{err: errors.New("access denied")}, "exports")
	assertKind(t, err, apperror.KindInternal)
}
