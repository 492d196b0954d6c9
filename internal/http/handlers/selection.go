package handlers

import (
	"net/http"

	"backoffice/internal/domain"
	"backoffice/internal/http/middleware"
	"backoffice/internal/prefs"
	"backoffice/internal/selection"

	"github.com/gin-gonic/gin"
)

type setModeRequest struct {
	Mode string `json:"mode"`
}

// PUT /api/selection/mode
func (a API) SetSelectionMode(c *gin.Context) {
	var req setModeRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	op := middleware.OperatorID(c)
	if err := a.Selection.SetMode(op, selection.Mode(req.Mode)); err != nil {
		RespondDomainError(c, err)
		return
	}

	// remember the operator's preferred mode, best effort
	if a.Prefs != nil {
		_ = a.Prefs.Set(c.Request.Context(), op, prefs.KeySelectionMode, req.Mode)
	}

	c.JSON(http.StatusOK, gin.H{"mode": req.Mode, "selected": a.Selection.Selected(op)})
}

type toggleRequest struct {
	VehicleID  int64 `json:"vehicleId"`
	SeatNumber int   `json:"seatNumber"`
}

// POST /api/selection/toggle
//
// Toggles against the freshest seat map so an occupied seat opens the
// occupant-details path instead of joining the selection.
func (a API) ToggleSeat(c *gin.Context) {
	var req toggleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.VehicleID <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "vehicleId", Msg: "vehicleId is required"})
		return
	}

	op := middleware.OperatorID(c)

	seatMap, ok := a.Store.Current(req.VehicleID)
	if !ok {
		var err error
		a.Store.SetActive(req.VehicleID)
		seatMap, err = a.Store.Load(c.Request.Context(), req.VehicleID, domain.ClassStandard)
		if err != nil {
			RespondDomainError(c, domain.UnavailableError{Msg: "seat map unavailable", Err: err})
			return
		}
	}

	result, err := a.Selection.Toggle(op, seatMap, req.SeatNumber)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/selection
func (a API) GetSelection(c *gin.Context) {
	op := middleware.OperatorID(c)
	c.JSON(http.StatusOK, gin.H{
		"mode":     a.Selection.Mode(op),
		"selected": a.Selection.Selected(op),
	})
}
