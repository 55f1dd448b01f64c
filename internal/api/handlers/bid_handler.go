// internal/api/handlers/bid_handler.go
package handlers

import (
	"net/http"

	"ride-marketplace-api-server/internal/rides"

	"github.com/gin-gonic/gin"
)

type BidHandler struct {
	Svc *rides.Service
}

// fleetId is checked by the service so an empty value gets its own message.
type SubmitBidRequest struct {
	FleetID   string   `json:"fleetId"`
	BidAmount *float64 `json:"bidAmount" binding:"required"`
}

// SubmitBid appends a fleet's bid to the ride and returns the updated ride.
func (h *BidHandler) SubmitBid(c *gin.Context) {
	var req SubmitBidRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ride, err := h.Svc.SubmitBid(c.Request.Context(), c.Param("rideId"), rides.BidRequest{
		FleetID:   req.FleetID,
		BidAmount: *req.BidAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ride)
}

func (h *BidHandler) ListBids(c *gin.Context) {
	bids, err := h.Svc.ListBids(c.Request.Context(), c.Param("rideId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

// AcceptBid records bidId as the ride's accepted bid.
func (h *BidHandler) AcceptBid(c *gin.Context) {
	ride, err := h.Svc.AcceptBid(c.Request.Context(), c.Param("rideId"), c.Param("bidId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bid accepted successfully",
		"ride":    ride,
	})
}
