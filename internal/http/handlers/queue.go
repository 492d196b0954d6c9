package handlers

import (
	"net/http"

	"backoffice/internal/domain"
	"backoffice/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/queue
func (a API) ListQueue(c *gin.Context) {
	entries, err := a.Queue.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// POST /api/queue
func (a API) EnqueueClient(c *gin.Context) {
	var req domain.WaitingQueueEntry
	if !BindJSONOrError(c, &req) {
		return
	}

	entry, err := a.Queue.Enqueue(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DELETE /api/queue/:id
func (a API) DequeueClient(c *gin.Context) {
	if err := a.Queue.Dequeue(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry removed"})
}

type assignFromQueueRequest struct {
	VehicleID   int64           `json:"vehicleId"`
	SeatNumbers []int           `json:"seatNumbers"`
	Payment     domain.Occupant `json:"payment"`
}

// POST /api/queue/:id/assign
func (a API) AssignFromQueue(c *gin.Context) {
	var req assignFromQueueRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.VehicleID <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "vehicleId", Msg: "vehicleId is required"})
		return
	}

	outcome, err := a.Queue.AssignFromQueue(
		c.Request.Context(),
		middleware.OperatorID(c),
		c.Param("id"),
		req.VehicleID,
		req.SeatNumbers,
		req.Payment,
	)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}
