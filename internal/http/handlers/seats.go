package handlers

import (
	"net/http"

	"backoffice/internal/domain"
	"backoffice/internal/http/middleware"
	"backoffice/internal/seatmap"
	"backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/vehicles/:id/seat-map?class=standard
//
// Marks the vehicle active (stale-response guard) and returns the seat map.
// A failed fetch still yields a complete all-vacant map with the error
// surfaced as a non-fatal warning, so the caller always has something
// render-able.
func (a API) GetSeatMap(c *gin.Context) {
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	classHint := domain.VehicleClass(c.DefaultQuery("class", string(domain.ClassStandard)))

	a.Store.SetActive(vehicleID)
	if op := middleware.OperatorID(c); op != 0 {
		a.Selection.SetVehicle(op, vehicleID)
	}

	m, err := a.Store.Load(c.Request.Context(), vehicleID, classHint)
	if err != nil {
		if err == seatmap.ErrStale {
			respondError(c, http.StatusConflict, "stale_response", "seat map superseded by vehicle switch", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"seatMap": m,
			"warning": "seat map fetch failed, showing vacant fallback: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"seatMap": m})
}

// POST /api/vehicles/:id/assign
func (a API) AssignSeats(c *gin.Context) {
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.AssignInput
	if !BindJSONOrError(c, &req) {
		return
	}
	req.VehicleID = vehicleID

	outcome, err := a.Assign.Assign(c.Request.Context(), middleware.OperatorID(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// POST /api/vehicles/:id/release
func (a API) ReleaseSeats(c *gin.Context) {
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.ReleaseInput
	if !BindJSONOrError(c, &req) {
		return
	}
	req.VehicleID = vehicleID

	outcome, err := a.Release.Release(c.Request.Context(), middleware.OperatorID(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
