// Package selection tracks which seats each operator currently has selected,
// under a single/multiple selection-mode toggle.
package selection

import (
	"sort"
	"sync"

	"backoffice/internal/domain"
)

type Mode string

const (
	ModeSingle   Mode = "single"
	ModeMultiple Mode = "multiple"
)

// ToggleResult reports the selection after a toggle. OpenDetails signals
// that an occupied seat was targeted: the caller should show the occupant
// details / release view instead of extending the selection.
type ToggleResult struct {
	Selected    []int `json:"selected"`
	OpenDetails bool  `json:"openDetails"`
}

type state struct {
	mode      Mode
	vehicleID int64
	seats     map[int]bool
}

// Manager holds per-operator selection state. The selection set is owned
// exclusively here; workflows clear it through Clear after a successful
// assignment or release.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*state
}

func NewManager() *Manager {
	return &Manager{sessions: map[int64]*state{}}
}

func (m *Manager) session(operatorID int64) *state {
	st, ok := m.sessions[operatorID]
	if !ok {
		st = &state{mode: ModeSingle, seats: map[int]bool{}}
		m.sessions[operatorID] = st
	}
	return st
}

// SetMode switches single/multiple selection. Switching always clears the
// current selection, so multiple->single can never leave more than one seat.
func (m *Manager) SetMode(operatorID int64, mode Mode) error {
	if mode != ModeSingle && mode != ModeMultiple {
		return domain.ValidationError{Field: "mode", Msg: "mode must be single or multiple"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.session(operatorID)
	st.mode = mode
	st.seats = map[int]bool{}
	return nil
}

func (m *Manager) Mode(operatorID int64) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session(operatorID).mode
}

// SetVehicle records the operator's active vehicle; changing vehicles clears
// the selection.
func (m *Manager) SetVehicle(operatorID, vehicleID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.session(operatorID)
	if st.vehicleID != vehicleID {
		st.vehicleID = vehicleID
		st.seats = map[int]bool{}
	}
}

// Toggle applies the selection rules against the current seat map:
//   - departed vehicle or out-of-range seat: rejected, "seat unavailable";
//   - occupied seat: selection forced to exactly that seat and OpenDetails
//     set, keeping single-seat release unambiguous;
//   - vacant seat: single mode replaces the set, multiple mode toggles
//     membership.
func (m *Manager) Toggle(operatorID int64, seatMap domain.SeatMap, seatNumber int) (ToggleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.session(operatorID)
	if st.vehicleID != seatMap.Vehicle.ID {
		st.vehicleID = seatMap.Vehicle.ID
		st.seats = map[int]bool{}
	}

	if seatMap.Vehicle.Departed {
		return ToggleResult{}, domain.ConflictError{Resource: "vehicle", Msg: "vehicle has departed, seat unavailable"}
	}

	seat, ok := seatMap.SeatAt(seatNumber)
	if !ok {
		return ToggleResult{}, domain.ValidationError{Field: "seatNumber", Msg: "seat unavailable"}
	}

	if seat.Occupied {
		st.seats = map[int]bool{seatNumber: true}
		return ToggleResult{Selected: st.selected(), OpenDetails: true}, nil
	}

	switch st.mode {
	case ModeMultiple:
		if st.seats[seatNumber] {
			delete(st.seats, seatNumber)
		} else {
			st.seats[seatNumber] = true
		}
	default:
		if st.seats[seatNumber] {
			st.seats = map[int]bool{}
		} else {
			st.seats = map[int]bool{seatNumber: true}
		}
	}

	return ToggleResult{Selected: st.selected()}, nil
}

// Selected returns the operator's selection, sorted.
func (m *Manager) Selected(operatorID int64) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session(operatorID).selected()
}

// Clear drops the operator's selection (vehicle switch, successful
// assignment, release).
func (m *Manager) Clear(operatorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(operatorID).seats = map[int]bool{}
}

func (st *state) selected() []int {
	out := make([]int, 0, len(st.seats))
	for n := range st.seats {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
