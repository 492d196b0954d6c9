package handlers

import (
	"encoding/json"
	"net/http"

	"backoffice/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/preferences/:key
//
// The preference store is a cache: a missing or malformed value is reported
// as found=false rather than an error, and callers keep their defaults.
func (a API) GetPreference(c *gin.Context) {
	op := middleware.OperatorID(c)
	key := c.Param("key")

	var value json.RawMessage
	found := a.Prefs != nil && a.Prefs.Get(c.Request.Context(), op, key, &value)

	resp := gin.H{"key": key, "found": found}
	if found {
		resp["value"] = value
	}
	c.JSON(http.StatusOK, resp)
}

type setPreferenceRequest struct {
	Value json.RawMessage `json:"value"`
}

// PUT /api/preferences/:key
func (a API) SetPreference(c *gin.Context) {
	var req setPreferenceRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if len(req.Value) == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "value is required", nil)
		return
	}

	if a.Prefs == nil {
		respondError(c, http.StatusServiceUnavailable, "prefs_unavailable", "preference store not configured", nil)
		return
	}

	op := middleware.OperatorID(c)
	key := c.Param("key")
	if err := a.Prefs.Set(c.Request.Context(), op, key, req.Value); err != nil {
		respondError(c, http.StatusServiceUnavailable, "prefs_unavailable", "failed to save preference", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "saved": true})
}
