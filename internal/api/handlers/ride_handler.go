// internal/api/handlers/ride_handler.go
package handlers

import (
	"net/http"

	"ride-marketplace-api-server/internal/rides"

	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	Svc *rides.Service
}

// Pointers let a price of 0 through while still requiring the field.
type CreateRideRequest struct {
	ClientID        string   `json:"clientId" binding:"required"`
	PickupLocation  string   `json:"pickupLocation" binding:"required"`
	DropoffLocation string   `json:"dropoffLocation" binding:"required"`
	ProposedPrice   *float64 `json:"proposedPrice" binding:"required"`
}

// RequestRide creates a ride request with no bids.
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req CreateRideRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ride, err := h.Svc.RequestRide(c.Request.Context(), rides.RideRequest{
		ClientID:        req.ClientID,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		ProposedPrice:   *req.ProposedPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ride)
}

// ListRides returns every ride, optionally filtered by ?clientId=.
func (h *RideHandler) ListRides(c *gin.Context) {
	list, err := h.Svc.ListRides(c.Request.Context(), c.Query("clientId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.Svc.GetRide(c.Request.Context(), c.Param("rideId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

func (h *RideHandler) DeleteRide(c *gin.Context) {
	if err := h.Svc.DeleteRide(c.Request.Context(), c.Param("rideId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ride request deleted successfully"})
}
