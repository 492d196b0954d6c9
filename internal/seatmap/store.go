package seatmap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backoffice/internal/domain"
	"backoffice/internal/upstream"
	"backoffice/internal/utils"
)

// ErrStale marks a seat-map response that resolved after the operator
// switched to a different vehicle. The result must be discarded, never
// rendered over the currently active vehicle's map.
var ErrStale = errors.New("seat map response superseded by vehicle switch")

// Fetcher is the slice of the upstream client the store needs.
type Fetcher interface {
	FetchSeatMap(ctx context.Context, vehicleID int64) (upstream.Snapshot, error)
}

// Store owns the per-vehicle seat maps. All occupancy state flows through
// Load; workflows reconcile by refetching, never by patching locally.
//
// Two guards from the concurrency model live here: a generation counter
// keyed by the active vehicle (stale-response guard) and a cooperative
// one-in-flight-mutation lock per vehicle.
type Store struct {
	fetcher Fetcher

	mu         sync.Mutex
	active     int64
	generation uint64
	maps       map[int64]domain.SeatMap
	inflight   map[int64]bool
}

func NewStore(fetcher Fetcher) *Store {
	return &Store{
		fetcher:  fetcher,
		maps:     map[int64]domain.SeatMap{},
		inflight: map[int64]bool{},
	}
}

// SetActive records the vehicle the operator is looking at. Switching bumps
// the generation so in-flight loads for the previous vehicle get discarded.
func (s *Store) SetActive(vehicleID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != vehicleID {
		s.active = vehicleID
		s.generation++
	}
}

func (s *Store) Active() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Load fetches and materializes the seat map for a vehicle. The returned map
// is always complete: on fetch failure it is the all-vacant fallback of the
// correct capacity and the fetch error is returned alongside for non-fatal
// surfacing. A result arriving after a vehicle switch returns ErrStale and
// is not cached.
func (s *Store) Load(ctx context.Context, vehicleID int64, classHint domain.VehicleClass) (domain.SeatMap, error) {
	s.mu.Lock()
	if s.active == 0 {
		s.active = vehicleID
	}
	wasActive := s.active == vehicleID
	gen := s.generation
	cached, hasCached := s.maps[vehicleID]
	s.mu.Unlock()

	snap, err := s.fetcher.FetchSeatMap(ctx, vehicleID)
	if err != nil {
		fallbackClass := classHint
		if hasCached {
			fallbackClass = cached.Vehicle.Class
		}
		utils.LogEvent("", "seatmap", "load_fallback",
			fmt.Sprintf("vehicle_id=%d err=%v", vehicleID, err))
		return Fallback(vehicleID, fallbackClass), err
	}

	m, err := Materialize(snap)
	if err != nil {
		return Fallback(vehicleID, classHint), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// only loads started for the active vehicle get discarded on a switch;
	// background loads (printing another vehicle) land in their own slot
	if wasActive && (s.generation != gen || s.active != vehicleID) {
		return m, ErrStale
	}
	s.maps[vehicleID] = m
	return m, nil
}

// Current returns the last successfully loaded map for a vehicle.
func (s *Store) Current(vehicleID int64) (domain.SeatMap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[vehicleID]
	return m, ok
}

// BeginMutation takes the cooperative per-vehicle mutation lock. A second
// assignment or release while one is outstanding is rejected before any
// network call, preventing duplicate submissions.
func (s *Store) BeginMutation(vehicleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[vehicleID] {
		return domain.ConflictError{Resource: "vehicle", Msg: "another operation is in progress for this vehicle"}
	}
	s.inflight[vehicleID] = true
	return nil
}

func (s *Store) EndMutation(vehicleID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, vehicleID)
}
