package handlers

import (
	"net/http"
	"strings"

	"backoffice/internal/http/middleware"
	"backoffice/internal/prefs"
	"backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

type quoteRequest struct {
	services.QuoteInput
	// Month, when set, saves the quoted total to the operator's
	// fare-simulator scratch pad for that YYYY-MM month.
	Month string `json:"month,omitempty"`
}

// POST /api/fares/quote
func (a API) QuoteFare(c *gin.Context) {
	var req quoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	quote, err := a.Fares.Quote(req.QuoteInput)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	if month := strings.TrimSpace(req.Month); month != "" && a.Prefs != nil {
		op := middleware.OperatorID(c)
		if op != 0 {
			// scratch totals are preview figures, saved best effort
			_ = a.Prefs.Set(c.Request.Context(), op, prefs.FareScratchKey(month), quote)
		}
	}

	c.JSON(http.StatusOK, quote)
}
