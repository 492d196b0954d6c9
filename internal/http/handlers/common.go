package handlers

import (
	"net/http"
	"strconv"

	"backoffice/internal/prefs"
	"backoffice/internal/repositories"
	"backoffice/internal/seatmap"
	"backoffice/internal/selection"
	"backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

// API bundles the workflow services behind the HTTP handlers.
type API struct {
	Store     *seatmap.Store
	Selection *selection.Manager
	Assign    *services.AssignmentService
	Release   *services.ReleaseService
	Queue     services.QueueService
	Receipts  services.ReceiptService
	Fares     services.FareService
	Closing   services.ClosingService
	Expenses  repositories.ExpenseRepo
	Prefs     *prefs.Store
	JWTSecret string
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "empty request body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload: "+err.Error(), nil)
		return false
	}
	return true
}

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}
