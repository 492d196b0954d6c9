// Package upstream talks to the cooperative's booking API, the sole
// authority for seat occupancy, pricing and departure state. This service
// never trusts its own arithmetic over an upstream response.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"backoffice/internal/domain"
)

// Snapshot is one full seat-map fetch: vehicle info plus a sparse seat map.
// The backend may omit trailing vacant seats; materialization fills them in.
type Snapshot struct {
	Vehicle domain.Vehicle
	Seats   map[int]SeatInfo
}

type SeatInfo struct {
	Occupied   bool
	Occupant   domain.Occupant
	AssignedAt time.Time
}

type AssignRequest struct {
	VehicleID   int64
	SeatNumbers []int
	Occupant    domain.Occupant
}

type SeatResult struct {
	SeatNumber int    `json:"seatNumber"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
}

// MutationResult is the backend's verdict on an assign/release call.
// TotalAmount is the backend-confirmed fare total in Ariary; it is the only
// figure ever persisted (client-side fare math is preview only).
type MutationResult struct {
	Success     bool
	Seats       []SeatResult
	TotalAmount int64
}

type Client struct {
	baseURL string
	http    *http.Client

	csrfMu sync.Mutex
	csrf   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// wire types

type snapshotWire struct {
	Vehicle vehicleWire             `json:"vehicle"`
	Seats   map[string]seatInfoWire `json:"seats"`
}

type vehicleWire struct {
	ID            int64  `json:"id"`
	Class         string `json:"class"`
	Capacity      int    `json:"capacity"`
	Route         string `json:"route"`
	DepartureDate string `json:"departureDate"`
	DepartureTime string `json:"departureTime"`
	Departed      bool   `json:"departed"`
}

type seatInfoWire struct {
	Occupied       bool   `json:"occupied"`
	Name           string `json:"name"`
	Contact        string `json:"contact"`
	Stop           string `json:"stop"`
	PaymentMethod  string `json:"paymentMethod"`
	MobileOperator string `json:"mobileOperator"`
	PaymentStatus  string `json:"paymentStatus"`
	AssignedAt     string `json:"assignedAt"`
}

type assignWire struct {
	VehicleID      int64  `json:"vehicleId"`
	SeatNumbers    []int  `json:"seatNumbers"`
	Name           string `json:"occupantName"`
	Contact        string `json:"occupantContact"`
	Stop           string `json:"stop,omitempty"`
	PaymentMethod  string `json:"paymentMethod,omitempty"`
	MobileOperator string `json:"mobileOperator,omitempty"`
	PaymentStatus  string `json:"paymentStatus,omitempty"`
}

type releaseWire struct {
	VehicleID   int64 `json:"vehicleId"`
	SeatNumbers []int `json:"seatNumbers"`
}

type mutationWire struct {
	Success     bool         `json:"success"`
	Error       string       `json:"error"`
	Seats       []SeatResult `json:"seats"`
	TotalAmount int64        `json:"totalAmount"`
}

// FetchSeatMap retrieves the full occupancy snapshot for one vehicle.
func (c *Client) FetchSeatMap(ctx context.Context, vehicleID int64) (Snapshot, error) {
	var out Snapshot

	url := fmt.Sprintf("%s/vehicles/%d/seat-map", c.baseURL, vehicleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return out, domain.InternalError{Msg: "build seat-map request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return out, domain.UnavailableError{Msg: "seat-map fetch failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, classifyStatus(resp, "seat map")
	}

	var wire snapshotWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return out, domain.InternalError{Msg: "decode seat-map response", Err: err}
	}
	return snapshotFromWire(wire), nil
}

// AssignSeats submits one all-or-nothing assignment for the whole seat set.
func (c *Client) AssignSeats(ctx context.Context, req AssignRequest) (MutationResult, error) {
	body := assignWire{
		VehicleID:      req.VehicleID,
		SeatNumbers:    req.SeatNumbers,
		Name:           req.Occupant.Name,
		Contact:        req.Occupant.Contact,
		Stop:           req.Occupant.Stop,
		PaymentMethod:  string(req.Occupant.PaymentMethod),
		MobileOperator: req.Occupant.MobileOperator,
		PaymentStatus:  string(req.Occupant.PaymentStatus),
	}
	return c.mutate(ctx, "/assign-seats", body)
}

// ReleaseSeats frees the given seats. The contract is batch even though the
// admin UI usually sends a single seat.
func (c *Client) ReleaseSeats(ctx context.Context, vehicleID int64, seatNumbers []int) (MutationResult, error) {
	return c.mutate(ctx, "/release-seats", releaseWire{VehicleID: vehicleID, SeatNumbers: seatNumbers})
}

// mutate runs one mutating call with a CSRF token attached. A 403 drops the
// cached token and retries once with a fresh one; a second rejection is an
// AuthError. Mutations are never retried for transport failures.
func (c *Client) mutate(ctx context.Context, path string, payload any) (MutationResult, error) {
	var out MutationResult

	raw, err := json.Marshal(payload)
	if err != nil {
		return out, domain.InternalError{Msg: "encode mutation payload", Err: err}
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.csrfToken(ctx, attempt > 0)
		if err != nil {
			return out, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
		if err != nil {
			return out, domain.InternalError{Msg: "build mutation request", Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-CSRF-Token", token)

		resp, err := c.http.Do(req)
		if err != nil {
			return out, domain.UnavailableError{Msg: "mutation request failed", Err: err}
		}

		if resp.StatusCode == http.StatusForbidden && attempt == 0 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return out, classifyStatus(resp, "mutation")
		}

		var wire mutationWire
		if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
			return out, domain.InternalError{Msg: "decode mutation response", Err: err}
		}
		out = MutationResult{Success: wire.Success, Seats: wire.Seats, TotalAmount: wire.TotalAmount}
		return out, nil
	}

	return out, domain.AuthError{Msg: "csrf token rejected"}
}

// csrfToken returns the cached token, fetching a fresh one when absent or
// when the previous attempt was rejected.
func (c *Client) csrfToken(ctx context.Context, force bool) (string, error) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()

	if c.csrf != "" && !force {
		return c.csrf, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/csrf-token", nil)
	if err != nil {
		return "", domain.InternalError{Msg: "build csrf request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", domain.UnavailableError{Msg: "csrf token fetch failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.AuthError{Msg: "csrf token fetch rejected: " + resp.Status}
	}

	var wire struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return "", domain.InternalError{Msg: "decode csrf response", Err: err}
	}
	if strings.TrimSpace(wire.Token) == "" {
		return "", domain.AuthError{Msg: "empty csrf token"}
	}

	c.csrf = wire.Token
	return c.csrf, nil
}

// classifyStatus maps upstream HTTP statuses onto the domain error taxonomy.
// Conflict bodies keep their per-seat messages verbatim.
func classifyStatus(resp *http.Response, what string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.AuthError{Msg: fmt.Sprintf("%s rejected: %s", what, strings.TrimSpace(string(raw)))}
	case http.StatusNotFound:
		return domain.NotFoundError{Resource: what}
	case http.StatusConflict:
		var wire mutationWire
		conflict := domain.ConflictError{Resource: what}
		if err := json.Unmarshal(raw, &wire); err == nil {
			conflict.Msg = wire.Error
			for _, seat := range wire.Seats {
				if !seat.Success {
					conflict.Seats = append(conflict.Seats, domain.SeatMessage{
						SeatNumber: seat.SeatNumber,
						Message:    seat.Message,
					})
				}
			}
		} else {
			conflict.Msg = strings.TrimSpace(string(raw))
		}
		return conflict
	default:
		return domain.InternalError{
			Msg: fmt.Sprintf("%s failed with status %d: %s", what, resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}
}

func snapshotFromWire(wire snapshotWire) Snapshot {
	snap := Snapshot{
		Vehicle: domain.Vehicle{
			ID:            wire.Vehicle.ID,
			Class:         domain.VehicleClass(wire.Vehicle.Class),
			Capacity:      wire.Vehicle.Capacity,
			Route:         wire.Vehicle.Route,
			DepartureDate: wire.Vehicle.DepartureDate,
			DepartureTime: wire.Vehicle.DepartureTime,
			Departed:      wire.Vehicle.Departed,
		},
		Seats: map[int]SeatInfo{},
	}

	for key, info := range wire.Seats {
		number, ok := seatNumberFromKey(key)
		if !ok {
			continue
		}
		seat := SeatInfo{
			Occupied: info.Occupied,
			Occupant: domain.Occupant{
				Name:           info.Name,
				Contact:        info.Contact,
				Stop:           info.Stop,
				PaymentMethod:  domain.PaymentMethod(info.PaymentMethod),
				MobileOperator: info.MobileOperator,
				PaymentStatus:  domain.PaymentStatus(info.PaymentStatus),
			},
		}
		if ts, err := time.Parse(time.RFC3339, info.AssignedAt); err == nil {
			seat.AssignedAt = ts
		}
		snap.Seats[number] = seat
	}

	return snap
}

// seatNumberFromKey parses "seat_7" style keys; bare numbers are accepted too.
func seatNumberFromKey(key string) (int, bool) {
	key = strings.TrimSpace(strings.TrimPrefix(key, "seat_"))
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
