package handlers

import (
	"net/http"
	"strconv"

	"backoffice/internal/domain"

	"github.com/gin-gonic/gin"
)

// GET /api/vehicles/:id/seats/:number/ticket
func (a API) GetSeatTicket(c *gin.Context) {
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	seatNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil || seatNumber < 1 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid seat number", nil)
		return
	}

	seatMap, loadErr := a.loadForPrint(c, vehicleID)
	if loadErr != nil {
		RespondDomainError(c, loadErr)
		return
	}

	pdf, filename, err := a.Receipts.SeatTicket(seatMap, seatNumber)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GET /api/vehicles/:id/manifest
func (a API) GetVehicleManifest(c *gin.Context) {
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	seatMap, loadErr := a.loadForPrint(c, vehicleID)
	if loadErr != nil {
		RespondDomainError(c, loadErr)
		return
	}

	pdf, filename, err := a.Receipts.VehicleManifest(seatMap)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// loadForPrint refuses to print from a fallback map; a receipt needs real
// occupancy data, not a vacant placeholder.
func (a API) loadForPrint(c *gin.Context, vehicleID int64) (domain.SeatMap, error) {
	classHint := domain.VehicleClass(c.DefaultQuery("class", string(domain.ClassStandard)))
	m, err := a.Store.Load(c.Request.Context(), vehicleID, classHint)
	if err != nil {
		return m, domain.UnavailableError{Msg: "seat map unavailable for printing", Err: err}
	}
	return m, nil
}
