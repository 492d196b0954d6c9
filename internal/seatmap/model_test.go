package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain"
	"backoffice/internal/upstream"
)

func standardSnapshot(seats map[int]upstream.SeatInfo) upstream.Snapshot {
	return upstream.Snapshot{
		Vehicle: domain.Vehicle{ID: 1, Class: domain.ClassStandard, Capacity: 16, Route: "Antananarivo - Mahajanga"},
		Seats:   seats,
	}
}

func TestMaterializeFillsTrailingVacantSeats(t *testing.T) {
	snap := standardSnapshot(map[int]upstream.SeatInfo{
		1: {Occupied: true, Occupant: domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash}},
		2: {Occupied: true, Occupant: domain.Occupant{Name: "Jean", Contact: "0339999999", PaymentMethod: domain.PayCash}},
	})

	m, err := Materialize(snap)
	require.NoError(t, err)

	require.Len(t, m.Seats, 16)
	assert.True(t, m.Seats[0].Occupied)
	assert.True(t, m.Seats[1].Occupied)
	for i := 2; i < 16; i++ {
		assert.False(t, m.Seats[i].Occupied, "seat %d should be vacant", i+1)
		assert.Equal(t, i+1, m.Seats[i].Number)
	}
}

func TestMaterializeCoercesPartialOccupantVacant(t *testing.T) {
	snap := standardSnapshot(map[int]upstream.SeatInfo{
		// name without contact or payment: invalid partial state
		3: {Occupied: true, Occupant: domain.Occupant{Name: "Naina"}},
		// mobile-money without an operator tag
		4: {Occupied: true, Occupant: domain.Occupant{Name: "Hery", Contact: "0321112233", PaymentMethod: domain.PayMobileMoney}},
	})

	m, err := Materialize(snap)
	require.NoError(t, err)

	for _, seat := range m.Seats {
		if seat.Occupied {
			t.Fatalf("seat %d should have been coerced vacant", seat.Number)
		}
	}
}

func TestMaterializeVIPCapacity(t *testing.T) {
	snap := upstream.Snapshot{
		Vehicle: domain.Vehicle{ID: 2, Class: domain.ClassVIP, Capacity: 10},
		Seats: map[int]upstream.SeatInfo{
			7: {Occupied: true, Occupant: domain.Occupant{Name: "Lala", Contact: "0347654321", PaymentStatus: domain.PaymentToCollect}},
		},
	}

	m, err := Materialize(snap)
	require.NoError(t, err)

	require.Len(t, m.Seats, 10)
	seat, ok := m.SeatAt(7)
	require.True(t, ok)
	assert.True(t, seat.Occupied)
	assert.Equal(t, "Lala", seat.Occupant.Name)
}

func TestMaterializeUnknownClass(t *testing.T) {
	snap := upstream.Snapshot{Vehicle: domain.Vehicle{ID: 3, Class: "sleeper"}}

	_, err := Materialize(snap)
	assert.True(t, domain.IsValidation(err))
}

func TestFallbackAlwaysCompleteAndVacant(t *testing.T) {
	for _, tc := range []struct {
		class domain.VehicleClass
		want  int
	}{
		{domain.ClassStandard, 16},
		{domain.ClassVIP, 10},
		{"unknown", 16}, // unknown class falls back to standard capacity
	} {
		m := Fallback(9, tc.class)
		require.Len(t, m.Seats, tc.want, "class %s", tc.class)
		for _, seat := range m.Seats {
			assert.False(t, seat.Occupied)
		}
	}
}
