// Package seatmap materializes upstream occupancy snapshots into complete,
// render-able seat maps and guards them against stale responses and
// concurrent mutations.
package seatmap

import (
	"fmt"

	"backoffice/internal/domain"
	"backoffice/internal/upstream"
	"backoffice/internal/utils"
)

// Materialize turns a sparse upstream snapshot into exactly capacity seats
// numbered 1..capacity. Seats missing from the payload are vacant. A seat
// reported occupied without every field its class requires is coerced vacant
// and logged; partial occupancy never reaches callers.
func Materialize(snap upstream.Snapshot) (domain.SeatMap, error) {
	schema, err := domain.SchemaFor(snap.Vehicle.Class)
	if err != nil {
		return domain.SeatMap{}, err
	}

	capacity := snap.Vehicle.Capacity
	if capacity <= 0 {
		capacity = schema.Capacity
	}

	out := domain.SeatMap{Vehicle: snap.Vehicle}
	out.Vehicle.Capacity = capacity
	out.Seats = make([]domain.Seat, capacity)

	for i := range out.Seats {
		number := i + 1
		out.Seats[i] = domain.Seat{Number: number}

		info, ok := snap.Seats[number]
		if !ok || !info.Occupied {
			continue
		}
		if !schema.Complete(info.Occupant) {
			utils.LogEvent("", "seatmap", "coerce_vacant",
				fmt.Sprintf("vehicle_id=%d seat=%d incomplete occupant dropped", snap.Vehicle.ID, number))
			continue
		}
		out.Seats[i].Occupied = true
		out.Seats[i].Occupant = info.Occupant
		out.Seats[i].AssignedAt = info.AssignedAt
	}

	return out, nil
}

// Fallback builds an all-vacant map of the correct capacity so callers are
// never left without a complete seat array after a failed fetch.
func Fallback(vehicleID int64, class domain.VehicleClass) domain.SeatMap {
	schema, err := domain.SchemaFor(class)
	if err != nil {
		schema, _ = domain.SchemaFor(domain.ClassStandard)
	}

	out := domain.SeatMap{
		Vehicle: domain.Vehicle{ID: vehicleID, Class: schema.Class, Capacity: schema.Capacity},
		Seats:   make([]domain.Seat, schema.Capacity),
	}
	for i := range out.Seats {
		out.Seats[i] = domain.Seat{Number: i + 1}
	}
	return out
}
