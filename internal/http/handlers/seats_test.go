package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain"
	"backoffice/internal/seatmap"
	"backoffice/internal/selection"
	"backoffice/internal/upstream"
)

type stubFetcher struct {
	snap upstream.Snapshot
	err  error
}

func (s stubFetcher) FetchSeatMap(context.Context, int64) (upstream.Snapshot, error) {
	return s.snap, s.err
}

func seatMapRouter(fetcher seatmap.Fetcher) (*gin.Engine, API) {
	gin.SetMode(gin.TestMode)
	api := API{
		Store:     seatmap.NewStore(fetcher),
		Selection: selection.NewManager(),
	}
	r := gin.New()
	r.GET("/api/vehicles/:id/seat-map", api.GetSeatMap)
	return r, api
}

func TestGetSeatMapReturnsCompleteMap(t *testing.T) {
	r, _ := seatMapRouter(stubFetcher{snap: upstream.Snapshot{
		Vehicle: domain.Vehicle{ID: 1, Class: domain.ClassStandard, Capacity: 16},
		Seats: map[int]upstream.SeatInfo{
			3: {Occupied: true, Occupant: domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash}},
		},
	}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles/1/seat-map", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		SeatMap domain.SeatMap `json:"seatMap"`
		Warning string         `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.SeatMap.Seats, 16)
	assert.Empty(t, body.Warning)
}

func TestGetSeatMapFetchFailureYieldsFallbackWithWarning(t *testing.T) {
	r, _ := seatMapRouter(stubFetcher{err: domain.UnavailableError{Msg: "connection refused"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles/1/seat-map?class=vip", nil))

	// a failed fetch is a warning, not an error: the caller still gets a
	// complete all-vacant map to render
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		SeatMap domain.SeatMap `json:"seatMap"`
		Warning string         `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.SeatMap.Seats, 10)
	assert.NotEmpty(t, body.Warning)
	for _, seat := range body.SeatMap.Seats {
		assert.False(t, seat.Occupied)
	}
}

func TestGetSeatMapInvalidID(t *testing.T) {
	r, _ := seatMapRouter(stubFetcher{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles/abc/seat-map", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles/0/seat-map", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondDomainErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{domain.ValidationError{Field: "name", Msg: "required"}, http.StatusBadRequest},
		{domain.NotFoundError{Resource: "vehicle"}, http.StatusNotFound},
		{domain.ConflictError{Resource: "seats"}, http.StatusConflict},
		{domain.AuthError{}, http.StatusUnauthorized},
		{domain.UnavailableError{}, http.StatusBadGateway},
		{domain.InternalError{}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondDomainError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, "error %T", tc.err)
	}
}

func TestConflictResponseCarriesPerSeatDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondDomainError(c, domain.ConflictError{
		Resource: "seats",
		Msg:      "selection contains unavailable seats",
		Seats:    []domain.SeatMessage{{SeatNumber: 5, Message: "seat 5 was taken by another counter"}},
	})

	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Details []domain.SeatMessage `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Details, 1)
	assert.Equal(t, "seat 5 was taken by another counter", body.Details[0].Message)
}
