package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"backoffice/internal/domain"
	"backoffice/internal/events"
	"backoffice/internal/seatmap"
	"backoffice/internal/selection"
	"backoffice/internal/utils"
)

// ReleaseService frees occupied seats and optionally reports the evicted
// occupants back into the waiting queue. The upstream contract is batch and
// the workflow honors that, even though the admin UI usually targets one
// seat from the occupant-details view.
type ReleaseService struct {
	Upstream  Mutator
	Store     *seatmap.Store
	Selection *selection.Manager
	Queue     QueueStore
	Events    *events.Producer
	RequestID string
}

type ReleaseInput struct {
	VehicleID   int64 `json:"vehicleId"`
	SeatNumbers []int `json:"seatNumbers"`
	Requeue     bool  `json:"requeue"`
}

type ReleaseOutcome struct {
	Released    []int                      `json:"released"`
	Skipped     []int                      `json:"skipped"` // already vacant, no-op
	Requeued    []domain.WaitingQueueEntry `json:"requeued,omitempty"`
	RevealQueue bool                       `json:"revealQueue"`
	SeatMap     domain.SeatMap             `json:"seatMap"`
}

// Release frees the targeted seats. Already-vacant seats are skipped as a
// no-op success; local seat state is never mutated directly, the refetched
// map is the only reconciliation.
func (s *ReleaseService) Release(ctx context.Context, operatorID int64, in ReleaseInput) (ReleaseOutcome, error) {
	var out ReleaseOutcome

	seats := normalizeSeats(in.SeatNumbers)
	if len(seats) == 0 {
		return out, domain.ValidationError{Field: "seatNumbers", Msg: "at least one seat must be targeted"}
	}

	// Departed vehicles are frozen locally; no network call is made.
	if cached, ok := s.Store.Current(in.VehicleID); ok && cached.Vehicle.Departed {
		return out, domain.ConflictError{Resource: "vehicle", Msg: "vehicle has departed"}
	}

	fresh, err := s.Store.Load(ctx, in.VehicleID, classHintFor(s.Store, in.VehicleID))
	if err != nil {
		if err == seatmap.ErrStale {
			return out, domain.ConflictError{Resource: "vehicle", Msg: "active vehicle changed, release aborted"}
		}
		return out, domain.UnavailableError{Msg: "could not verify seat state", Err: err}
	}
	if fresh.Vehicle.Departed {
		return out, domain.ConflictError{Resource: "vehicle", Msg: "vehicle has departed"}
	}

	occupied := []int{}
	evicted := map[int]domain.Occupant{}
	for _, n := range seats {
		seat, ok := fresh.SeatAt(n)
		if !ok {
			return out, domain.ValidationError{Field: "seatNumbers", Msg: fmt.Sprintf("seat %d unavailable", n)}
		}
		if !seat.Occupied {
			out.Skipped = append(out.Skipped, n)
			continue
		}
		occupied = append(occupied, n)
		evicted[n] = seat.Occupant
	}

	// Releasing only vacant seats is an idempotent no-op.
	if len(occupied) == 0 {
		out.SeatMap = fresh
		s.Selection.Clear(operatorID)
		return out, nil
	}

	if err := s.Store.BeginMutation(in.VehicleID); err != nil {
		return out, err
	}
	defer s.Store.EndMutation(in.VehicleID)

	res, submitErr := s.Upstream.ReleaseSeats(ctx, in.VehicleID, occupied)

	out.SeatMap, _ = s.Store.Load(ctx, in.VehicleID, fresh.Vehicle.Class)

	if submitErr != nil {
		return out, submitErr
	}
	if !res.Success {
		return out, domain.ConflictError{Resource: "release", Msg: "backend rejected the release", Seats: failedSeats(res)}
	}

	out.Released = occupied
	s.Selection.Clear(operatorID)

	if in.Requeue && s.Queue != nil {
		now := utils.NowUTC()
		for _, n := range occupied {
			occ := evicted[n]
			entry := domain.WaitingQueueEntry{
				ID:                 uuid.NewString(),
				Name:               strings.TrimSpace(occ.Name),
				Contact:            strings.TrimSpace(occ.Contact),
				RequestedSeatCount: 1,
				Date:               utils.FormatDate(now),
				Time:               utils.FormatTimeHM(now),
				IsVIP:              fresh.Vehicle.Class == domain.ClassVIP,
			}
			if err := s.Queue.Insert(entry); err != nil {
				utils.LogEvent(s.RequestID, "release", "requeue_failed",
					fmt.Sprintf("seat=%d err=%v", n, err))
				continue
			}
			out.Requeued = append(out.Requeued, entry)
		}
		out.RevealQueue = len(out.Requeued) > 0
	}

	s.Events.Publish(ctx, events.SeatEvent{
		Type:        events.TypeSeatReleased,
		VehicleID:   in.VehicleID,
		SeatNumbers: occupied,
		OperatorID:  operatorID,
	})

	utils.LogEvent(s.RequestID, "release", "released",
		fmt.Sprintf("vehicle_id=%d seats=%s requeued=%d", in.VehicleID, utils.FormatSeatNumbers(occupied), len(out.Requeued)))
	return out, nil
}
