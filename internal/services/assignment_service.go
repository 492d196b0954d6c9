package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"backoffice/internal/domain"
	"backoffice/internal/events"
	"backoffice/internal/repositories"
	"backoffice/internal/seatmap"
	"backoffice/internal/selection"
	"backoffice/internal/upstream"
	"backoffice/internal/utils"
)

// Mutator is the slice of the upstream client the workflows submit through.
type Mutator interface {
	AssignSeats(ctx context.Context, req upstream.AssignRequest) (upstream.MutationResult, error)
	ReleaseSeats(ctx context.Context, vehicleID int64, seatNumbers []int) (upstream.MutationResult, error)
}

// QueueStore is implemented by repositories.WaitingQueueRepo.
type QueueStore interface {
	List() ([]domain.WaitingQueueEntry, error)
	Get(id string) (domain.WaitingQueueEntry, error)
	Insert(e domain.WaitingQueueEntry) error
	Delete(id string) error
}

// ReceiptStore is implemented by repositories.ReceiptRepo.
type ReceiptStore interface {
	Insert(rec repositories.ReceiptRecord) (int64, error)
}

// AssignmentService runs the validated, all-or-nothing seat assignment
// workflow. Local state changes only after a confirmed success response;
// every outcome, success or conflict, ends in a full seat-map refetch.
type AssignmentService struct {
	Upstream  Mutator
	Store     *seatmap.Store
	Selection *selection.Manager
	Queue     QueueStore
	Receipts  ReceiptStore
	Events    *events.Producer
	RequestID string

	// receiptSeq numbers receipts for display and printing. It is
	// session-scoped: not unique across restarts and not persisted.
	receiptSeq atomic.Uint64
}

type AssignInput struct {
	VehicleID    int64           `json:"vehicleId"`
	SeatNumbers  []int           `json:"seatNumbers"`
	Occupant     domain.Occupant `json:"occupant"`
	QueueEntryID string          `json:"queueEntryId,omitempty"`
}

type AssignOutcome struct {
	ReceiptNumber     uint64         `json:"receiptNumber"`
	ReceiptRef        string         `json:"receiptRef"`
	TotalAmount       int64          `json:"totalAmount"`
	SeatMap           domain.SeatMap `json:"seatMap"`
	QueueEntryRemoved bool           `json:"queueEntryRemoved"`
}

// Assign validates and submits one assignment for the whole seat set.
//
// Occupancy is re-validated against a fresh seat map immediately before
// submission, not just at selection time; the backend stays the sole arbiter
// of conflicts and its per-seat failures are surfaced verbatim.
func (s *AssignmentService) Assign(ctx context.Context, operatorID int64, in AssignInput) (AssignOutcome, error) {
	var out AssignOutcome

	seats := normalizeSeats(in.SeatNumbers)
	if len(seats) == 0 {
		return out, domain.ValidationError{Field: "seatNumbers", Msg: "at least one seat must be selected"}
	}

	// Departed vehicles are frozen locally; no network call is made.
	if cached, ok := s.Store.Current(in.VehicleID); ok && cached.Vehicle.Departed {
		return out, domain.ConflictError{Resource: "vehicle", Msg: "vehicle has departed"}
	}

	fresh, err := s.Store.Load(ctx, in.VehicleID, classHintFor(s.Store, in.VehicleID))
	if err != nil {
		if err == seatmap.ErrStale {
			return out, domain.ConflictError{Resource: "vehicle", Msg: "active vehicle changed, assignment aborted"}
		}
		return out, domain.UnavailableError{Msg: "could not verify seat availability", Err: err}
	}
	if fresh.Vehicle.Departed {
		return out, domain.ConflictError{Resource: "vehicle", Msg: "vehicle has departed"}
	}

	if conflict := vacantCheck(fresh, seats); conflict != nil {
		return out, *conflict
	}

	schema, err := domain.SchemaFor(fresh.Vehicle.Class)
	if err != nil {
		return out, err
	}
	if err := schema.Validate(in.Occupant); err != nil {
		return out, err
	}
	if schema.HasStop && in.Occupant.Stop != "" && len(strings.TrimSpace(in.Occupant.Stop)) < 3 {
		// short stop is a warning only, never a blocker
		utils.LogEvent(s.RequestID, "assignment", "short_stop",
			fmt.Sprintf("vehicle_id=%d stop=%q", in.VehicleID, in.Occupant.Stop))
	}

	if err := s.Store.BeginMutation(in.VehicleID); err != nil {
		return out, err
	}
	defer s.Store.EndMutation(in.VehicleID)

	res, submitErr := s.Upstream.AssignSeats(ctx, upstream.AssignRequest{
		VehicleID:   in.VehicleID,
		SeatNumbers: seats,
		Occupant:    in.Occupant,
	})

	// Ground truth after any mutation attempt, conflict included.
	out.SeatMap, _ = s.Store.Load(ctx, in.VehicleID, fresh.Vehicle.Class)

	if submitErr != nil {
		return out, submitErr
	}
	if !res.Success {
		return out, domain.ConflictError{Resource: "assignment", Msg: "backend rejected the assignment", Seats: failedSeats(res)}
	}

	s.Selection.Clear(operatorID)

	out.ReceiptNumber = s.receiptSeq.Add(1)
	out.ReceiptRef = fmt.Sprintf("RCT-%d-%s", in.VehicleID, strings.ToUpper(uuid.NewString()[:8]))
	out.TotalAmount = res.TotalAmount

	if s.Receipts != nil {
		_, err := s.Receipts.Insert(repositories.ReceiptRecord{
			Reference:    out.ReceiptRef,
			VehicleID:    in.VehicleID,
			SeatNumbers:  utils.FormatSeatNumbers(seats),
			OccupantName: strings.TrimSpace(in.Occupant.Name),
			Amount:       res.TotalAmount,
			IssuedOn:     utils.FormatDate(utils.NowUTC()),
		})
		if err != nil {
			utils.LogEvent(s.RequestID, "assignment", "receipt_record_failed", err.Error())
		}
	}

	if in.QueueEntryID != "" && s.Queue != nil {
		if err := s.Queue.Delete(in.QueueEntryID); err != nil {
			utils.LogEvent(s.RequestID, "assignment", "queue_dequeue_failed",
				fmt.Sprintf("entry_id=%s err=%v", in.QueueEntryID, err))
		} else {
			out.QueueEntryRemoved = true
		}
	}

	s.Events.Publish(ctx, events.SeatEvent{
		Type:        events.TypeSeatAssigned,
		VehicleID:   in.VehicleID,
		SeatNumbers: seats,
		Occupant:    strings.TrimSpace(in.Occupant.Name),
		OperatorID:  operatorID,
	})
	if out.SeatMap.Vehicle.Departed && !fresh.Vehicle.Departed {
		s.Events.Publish(ctx, events.SeatEvent{
			Type:       events.TypeVehicleDeparted,
			VehicleID:  in.VehicleID,
			OperatorID: operatorID,
		})
	}

	utils.LogEvent(s.RequestID, "assignment", "assigned",
		fmt.Sprintf("vehicle_id=%d seats=%s receipt=%s", in.VehicleID, utils.FormatSeatNumbers(seats), out.ReceiptRef))
	return out, nil
}

// vacantCheck rejects the submission when any targeted seat is out of range
// or already occupied.
func vacantCheck(m domain.SeatMap, seats []int) *domain.ConflictError {
	var taken []domain.SeatMessage
	for _, n := range seats {
		seat, ok := m.SeatAt(n)
		if !ok {
			taken = append(taken, domain.SeatMessage{SeatNumber: n, Message: "seat unavailable"})
			continue
		}
		if seat.Occupied {
			taken = append(taken, domain.SeatMessage{SeatNumber: n, Message: "seat already occupied"})
		}
	}
	if len(taken) == 0 {
		return nil
	}
	return &domain.ConflictError{Resource: "seats", Msg: "selection contains unavailable seats", Seats: taken}
}

func failedSeats(res upstream.MutationResult) []domain.SeatMessage {
	var out []domain.SeatMessage
	for _, seat := range res.Seats {
		if !seat.Success {
			out = append(out, domain.SeatMessage{SeatNumber: seat.SeatNumber, Message: seat.Message})
		}
	}
	return out
}

func normalizeSeats(seats []int) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, n := range seats {
		if n < 1 || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func classHintFor(store *seatmap.Store, vehicleID int64) domain.VehicleClass {
	if cached, ok := store.Current(vehicleID); ok {
		return cached.Vehicle.Class
	}
	return domain.ClassStandard
}
