package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"backoffice/internal/domain"
	"backoffice/internal/utils"
)

// QueueService manages the waiting list and the thin composition that
// assigns a queued client to seats.
type QueueService struct {
	Repo      QueueStore
	Assigner  *AssignmentService
	RequestID string
}

func (s QueueService) List() ([]domain.WaitingQueueEntry, error) {
	return s.Repo.List()
}

// Enqueue persists a staff-entered queue entry, stamping id and date/time
// defaults.
func (s QueueService) Enqueue(e domain.WaitingQueueEntry) (domain.WaitingQueueEntry, error) {
	e.Name = strings.TrimSpace(e.Name)
	e.Contact = strings.TrimSpace(e.Contact)
	if e.RequestedSeatCount == 0 {
		e.RequestedSeatCount = 1
	}
	if err := e.Validate(); err != nil {
		return e, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := utils.NowUTC()
	if e.Date == "" {
		e.Date = utils.FormatDate(now)
	}
	if e.Time == "" {
		e.Time = utils.FormatTimeHM(now)
	}
	if err := s.Repo.Insert(e); err != nil {
		return e, err
	}
	utils.LogEvent(s.RequestID, "queue", "enqueued", "entry_id="+e.ID)
	return e, nil
}

func (s QueueService) Dequeue(id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationError{Field: "id", Msg: "id is required"}
	}
	return s.Repo.Delete(id)
}

// AssignFromQueue runs the assignment workflow with the queue entry's name
// and contact; the entry is consumed on success inside the workflow. The
// payment argument carries class-specific fields (payment method, operator,
// status) the queue entry does not store.
func (s QueueService) AssignFromQueue(ctx context.Context, operatorID int64, entryID string, vehicleID int64, seatNumbers []int, payment domain.Occupant) (AssignOutcome, error) {
	entry, err := s.Repo.Get(entryID)
	if err != nil {
		return AssignOutcome{}, err
	}

	occupant := payment
	occupant.Name = entry.Name
	occupant.Contact = entry.Contact

	return s.Assigner.Assign(ctx, operatorID, AssignInput{
		VehicleID:    vehicleID,
		SeatNumbers:  seatNumbers,
		Occupant:     occupant,
		QueueEntryID: entry.ID,
	})
}
