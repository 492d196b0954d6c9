package handlers

import (
	"net/http"

	"backoffice/internal/domain"
	"backoffice/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	payload := gin.H{
		"error": message,
		"code":  code,
	}
	if details != nil {
		payload["details"] = details
	}
	if reqID := middleware.GetRequestID(c); reqID != "" {
		payload["request_id"] = reqID
	}
	c.JSON(status, payload)
}

// RespondDomainError maps the workflow error taxonomy to HTTP responses.
// Conflicts keep their per-seat backend messages; auth errors are surfaced
// distinctly so the UI prompts re-authentication rather than implying a
// data problem.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		var details any
		if conflict, ok := domain.AsConflict(err); ok && len(conflict.Seats) > 0 {
			details = conflict.Seats
		}
		respondError(c, http.StatusConflict, "conflict", err.Error(), details)
	case domain.IsAuth(err):
		respondError(c, http.StatusUnauthorized, "auth_error", err.Error(), nil)
	case domain.IsUnavailable(err):
		respondError(c, http.StatusBadGateway, "upstream_unavailable", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
