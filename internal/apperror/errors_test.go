package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", Validation("fleetId cannot be empty"), http.StatusBadRequest, "fleetId cannot be empty"},
		{"validationf", Validationf("invalid ride id %q", "x"), http.StatusBadRequest, `invalid ride id "x"`},
		{"not found", NotFound("Ride not found"), http.StatusNotFound, "Ride not found"},
		{"internal", Internal(cause, "Failed to list rides"), http.StatusInternalServerError, "Failed to list rides"},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("Bid not found on this ride")), http.StatusNotFound, "Bid not found on this ride"},
		{"untagged", cause, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Fatalf("status = %d, want %d", got, tt.status)
			}
			if got := Message(tt.err); got != tt.message {
				t.Fatalf("message = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := Internal(cause, "Failed to delete ride")

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable through errors.Is")
	}
	if KindOf(err) != KindInternal {
		t.Fatalf("expected internal kind, got %s", KindOf(err))
	}
	if err.Error() != "Failed to delete ride: socket closed" {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}
