package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain"
)

func occupiedSeatMap() domain.SeatMap {
	m := domain.SeatMap{
		Vehicle: domain.Vehicle{
			ID:            1,
			Class:         domain.ClassStandard,
			Capacity:      16,
			Route:         "Antananarivo - Mahajanga",
			DepartureDate: "2026-09-01",
			DepartureTime: "08:00",
		},
		Seats: make([]domain.Seat, 16),
	}
	for i := range m.Seats {
		m.Seats[i] = domain.Seat{Number: i + 1}
	}
	m.Seats[2] = domain.Seat{
		Number:   3,
		Occupied: true,
		Occupant: domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash},
	}
	return m
}

func TestSeatTicketForOccupiedSeat(t *testing.T) {
	raw, filename, err := ReceiptService{}.SeatTicket(occupiedSeatMap(), 3)
	require.NoError(t, err)

	assert.True(t, len(raw) > 0)
	assert.Equal(t, "%PDF", string(raw[:4]))
	assert.Equal(t, "TICKET_1_3_Rasoa.pdf", filename)
}

func TestSeatTicketVacantSeatHasNoTicket(t *testing.T) {
	_, _, err := ReceiptService{}.SeatTicket(occupiedSeatMap(), 4)
	assert.True(t, domain.IsNotFound(err))
}

func TestSeatTicketOutOfRange(t *testing.T) {
	_, _, err := ReceiptService{}.SeatTicket(occupiedSeatMap(), 17)
	assert.True(t, domain.IsValidation(err))
}

func TestVehicleManifest(t *testing.T) {
	raw, filename, err := ReceiptService{}.VehicleManifest(occupiedSeatMap())
	require.NoError(t, err)

	assert.Equal(t, "%PDF", string(raw[:4]))
	assert.Contains(t, filename, "MANIFEST")
}
