package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain"
	"backoffice/internal/seatmap"
	"backoffice/internal/selection"
	"backoffice/internal/upstream"
)

func TestEnqueueStampsDefaults(t *testing.T) {
	queue := newFakeQueue()
	svc := QueueService{Repo: queue}

	entry, err := svc.Enqueue(domain.WaitingQueueEntry{
		Name:    "  Jean ",
		Contact: "0339999999",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jean", entry.Name)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 1, entry.RequestedSeatCount)
	assert.NotEmpty(t, entry.Date)
	assert.NotEmpty(t, entry.Time)
	require.Len(t, queue.inserted, 1)
}

func TestEnqueueValidation(t *testing.T) {
	svc := QueueService{Repo: newFakeQueue()}

	_, err := svc.Enqueue(domain.WaitingQueueEntry{Name: "Jean"})
	assert.True(t, domain.IsValidation(err), "missing contact should be rejected")

	_, err = svc.Enqueue(domain.WaitingQueueEntry{Name: "   ", Contact: "0339999999"})
	assert.True(t, domain.IsValidation(err), "blank name should be rejected")

	_, err = svc.Enqueue(domain.WaitingQueueEntry{Name: "Jean", Contact: "0339999999", RequestedSeatCount: -2})
	assert.True(t, domain.IsValidation(err))
}

func TestDequeueRequiresID(t *testing.T) {
	svc := QueueService{Repo: newFakeQueue()}
	err := svc.Dequeue("  ")
	assert.True(t, domain.IsValidation(err))
}

func TestAssignFromQueueUsesEntryIdentity(t *testing.T) {
	booking := &fakeBooking{snaps: map[int64]upstream.Snapshot{
		1: {Vehicle: standardVehicle(1)},
	}}
	booking.assignRes = upstream.MutationResult{Success: true, TotalAmount: 45_000}
	booking.onAssign = func(req upstream.AssignRequest) {
		booking.occupy(req.VehicleID, req.Occupant, req.SeatNumbers...)
	}
	queue := newFakeQueue()
	queue.entries["q1"] = domain.WaitingQueueEntry{ID: "q1", Name: "Jean", Contact: "0339999999", RequestedSeatCount: 1}

	assigner := &AssignmentService{
		Upstream:  booking,
		Store:     seatmap.NewStore(booking),
		Selection: selection.NewManager(),
		Queue:     queue,
	}
	svc := QueueService{Repo: queue, Assigner: assigner}

	// the caller supplies only payment details; identity comes from the entry
	out, err := svc.AssignFromQueue(context.Background(), 1, "q1", 1, []int{2}, domain.Occupant{
		Name:          "should be overridden",
		PaymentMethod: domain.PayCash,
	})
	require.NoError(t, err)

	assert.Equal(t, "Jean", booking.lastAssign.Occupant.Name)
	assert.Equal(t, "0339999999", booking.lastAssign.Occupant.Contact)
	assert.True(t, out.QueueEntryRemoved)
	assert.Empty(t, queue.entries, "entry consumed on success")
}

func TestAssignFromQueueUnknownEntry(t *testing.T) {
	svc := QueueService{Repo: newFakeQueue()}
	_, err := svc.AssignFromQueue(context.Background(), 1, "nope", 1, []int{2}, domain.Occupant{})
	assert.True(t, domain.IsNotFound(err))
}
