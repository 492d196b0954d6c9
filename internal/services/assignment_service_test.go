package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain"
	"backoffice/internal/repositories"
	"backoffice/internal/seatmap"
	"backoffice/internal/selection"
	"backoffice/internal/upstream"
)

// fakeBooking stands in for the upstream booking API on both the fetch and
// mutation sides, recording every call so tests can assert what went over
// the wire (and, just as important, what never did).
type fakeBooking struct {
	mu    sync.Mutex
	snaps map[int64]upstream.Snapshot

	fetchErr   error
	fetchCalls int

	assignRes   upstream.MutationResult
	assignErr   error
	assignCalls int
	lastAssign  upstream.AssignRequest
	onAssign    func(req upstream.AssignRequest)

	releaseRes   upstream.MutationResult
	releaseErr   error
	releaseCalls int
	lastRelease  []int
	onRelease    func(vehicleID int64, seats []int)
}

func (f *fakeBooking) FetchSeatMap(_ context.Context, vehicleID int64) (upstream.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return upstream.Snapshot{}, f.fetchErr
	}
	snap, ok := f.snaps[vehicleID]
	if !ok {
		return upstream.Snapshot{}, domain.NotFoundError{Resource: "vehicle"}
	}
	return snap, nil
}

func (f *fakeBooking) AssignSeats(_ context.Context, req upstream.AssignRequest) (upstream.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignCalls++
	f.lastAssign = req
	if f.onAssign != nil {
		f.onAssign(req)
	}
	return f.assignRes, f.assignErr
}

func (f *fakeBooking) ReleaseSeats(_ context.Context, vehicleID int64, seatNumbers []int) (upstream.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseCalls++
	f.lastRelease = seatNumbers
	if f.onRelease != nil {
		f.onRelease(vehicleID, seatNumbers)
	}
	return f.releaseRes, f.releaseErr
}

// occupy marks seats occupied in the stored snapshot so the post-mutation
// refetch reflects the change, the way the real backend would.
func (f *fakeBooking) occupy(vehicleID int64, occ domain.Occupant, seats ...int) {
	snap := f.snaps[vehicleID]
	if snap.Seats == nil {
		snap.Seats = map[int]upstream.SeatInfo{}
	}
	for _, n := range seats {
		snap.Seats[n] = upstream.SeatInfo{Occupied: true, Occupant: occ}
	}
	f.snaps[vehicleID] = snap
}

func (f *fakeBooking) vacate(vehicleID int64, seats ...int) {
	snap := f.snaps[vehicleID]
	for _, n := range seats {
		delete(snap.Seats, n)
	}
	f.snaps[vehicleID] = snap
}

type fakeQueue struct {
	entries  map[string]domain.WaitingQueueEntry
	inserted []domain.WaitingQueueEntry
	deleted  []string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{entries: map[string]domain.WaitingQueueEntry{}}
}

func (q *fakeQueue) List() ([]domain.WaitingQueueEntry, error) {
	out := make([]domain.WaitingQueueEntry, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e)
	}
	return out, nil
}

func (q *fakeQueue) Get(id string) (domain.WaitingQueueEntry, error) {
	e, ok := q.entries[id]
	if !ok {
		return domain.WaitingQueueEntry{}, domain.NotFoundError{Resource: "queue entry"}
	}
	return e, nil
}

func (q *fakeQueue) Insert(e domain.WaitingQueueEntry) error {
	q.entries[e.ID] = e
	q.inserted = append(q.inserted, e)
	return nil
}

func (q *fakeQueue) Delete(id string) error {
	if _, ok := q.entries[id]; !ok {
		return domain.NotFoundError{Resource: "queue entry"}
	}
	delete(q.entries, id)
	q.deleted = append(q.deleted, id)
	return nil
}

type fakeReceipts struct {
	records []repositories.ReceiptRecord
}

func (r *fakeReceipts) Insert(rec repositories.ReceiptRecord) (int64, error) {
	r.records = append(r.records, rec)
	return int64(len(r.records)), nil
}

func standardVehicle(id int64) domain.Vehicle {
	return domain.Vehicle{ID: id, Class: domain.ClassStandard, Capacity: 16, Route: "Antananarivo - Mahajanga"}
}

func newAssignmentFixture(snaps map[int64]upstream.Snapshot) (*AssignmentService, *fakeBooking, *fakeQueue, *fakeReceipts) {
	booking := &fakeBooking{snaps: snaps}
	queue := newFakeQueue()
	receipts := &fakeReceipts{}
	svc := &AssignmentService{
		Upstream:  booking,
		Store:     seatmap.NewStore(booking),
		Selection: selection.NewManager(),
		Queue:     queue,
		Receipts:  receipts,
	}
	return svc, booking, queue, receipts
}

func TestAssignSuccess(t *testing.T) {
	svc, booking, _, receipts := newAssignmentFixture(map[int64]upstream.Snapshot{
		1: {Vehicle: standardVehicle(1)},
	})
	occ := domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash}
	booking.assignRes = upstream.MutationResult{Success: true, TotalAmount: 90_000}
	booking.onAssign = func(req upstream.AssignRequest) {
		booking.occupy(req.VehicleID, req.Occupant, req.SeatNumbers...)
	}

	// duplicate and unordered seat numbers are normalized before submission
	out, err := svc.Assign(context.Background(), 1, AssignInput{
		VehicleID:   1,
		SeatNumbers: []int{4, 3, 3},
		Occupant:    occ,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 4}, booking.lastAssign.SeatNumbers)
	assert.Equal(t, uint64(1), out.ReceiptNumber)
	assert.True(t, strings.HasPrefix(out.ReceiptRef, "RCT-1-"))
	assert.Equal(t, int64(90_000), out.TotalAmount)

	// the returned map is the refetched ground truth, not a local patch
	for _, n := range []int{3, 4} {
		seat, ok := out.SeatMap.SeatAt(n)
		require.True(t, ok)
		assert.True(t, seat.Occupied)
		assert.Equal(t, "Rasoa", seat.Occupant.Name)
	}

	require.Len(t, receipts.records, 1)
	assert.Equal(t, out.ReceiptRef, receipts.records[0].Reference)
	assert.Equal(t, int64(90_000), receipts.records[0].Amount)
}

func TestAssignValidationBlocksSubmission(t *testing.T) {
	svc, booking, _, _ := newAssignmentFixture(map[int64]upstream.Snapshot{
		1: {Vehicle: standardVehicle(1)},
	})

	// standard class: payment method is mandatory
	_, err := svc.Assign(context.Background(), 1, AssignInput{
		VehicleID:   1,
		SeatNumbers: []int{3},
		Occupant:    domain.Occupant{Name: "Rasoa", Contact: "0341234567"},
	})
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, booking.assignCalls, "invalid occupant must never reach the backend")
}

func TestAssignEmptySelectionRejected(t *testing.T) {
	svc, booking, _, _ := newAssignmentFixture(map[int64]upstream.Snapshot{})

	_, err := svc.Assign(context.Background(), 1, AssignInput{VehicleID: 1})
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, booking.fetchCalls)
}

func TestAssignPreSubmitOccupancyCheck(t *testing.T) {
	svc, booking, _, _ := newAssignmentFixture(map[int64]upstream.Snapshot{
		1: {Vehicle: standardVehicle(1)},
	})
	booking.occupy(1, domain.Occupant{Name: "Hery", Contact: "0321112233", PaymentMethod: domain.PayCash}, 5)

	_, err := svc.Assign(context.Background(), 1, AssignInput{
		VehicleID:   1,
		SeatNumbers: []int{5, 6},
		Occupant:    domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash},
	})

	conflict, ok := domain.AsConflict(err)
	require.True(t, ok)
	require.Len(t, conflict.Seats, 1)
	assert.Equal(t, 5, conflict.Seats[0].SeatNumber)
	assert.Equal(t, "seat already occupied", conflict.Seats[0].Message)
	assert.Zero(t, booking.assignCalls)
}

func TestAssignBackendConflictSurfacedVerbatim(t *testing.T) {
	svc, booking, _, _ := newAssignmentFixture(map[int64]upstream.Snapshot{
		1: {Vehicle: standardVehicle(1)},
	})
	booking.assignRes = upstream.MutationResult{
		Success: false,
		Seats: []upstream.SeatResult{
			{SeatNumber: 5, Success: false, Message: "seat 5 was taken by another counter"},
			{SeatNumber: 6, Success: true},
		},
	}

	_, err := svc.Assign(context.Background(), 1, AssignInput{
		VehicleID:   1,
		SeatNumbers: []int{5, 6},
		Occupant:    domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash},
	})

	conflict, ok := domain.AsConflict(err)
	require.True(t, ok)
	require.Len(t, conflict.Seats, 1)
	assert.Equal(t, "seat 5 was taken by another counter", conflict.Seats[0].Message)

	// one pre-submit load plus the mandatory post-conflict refetch
	assert.Equal(t, 2, booking.fetchCalls)
}

func TestAssignDepartedVehicleIsFrozenLocally(t *testing.T) {
	departed := standardVehicle(2)
	departed.Departed = true
	svc, booking, _, _ := newAssignmentFixture(map[int64]upstream.Snapshot{
		2: {Vehicle: departed},
	})

	// warm the cache, then verify no further network traffic happens
	_, err := svc.Store.Load(context.Background(), 2, domain.ClassStandard)
	require.NoError(t, err)
	booking.fetchCalls = 0

	_, err = svc.Assign(context.Background(), 1, AssignInput{
		VehicleID:   2,
		SeatNumbers: []int{1},
		Occupant:    domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash},
	})
	assert.True(t, domain.IsConflict(err))
	assert.Zero(t, booking.fetchCalls)
	assert.Zero(t, booking.assignCalls)
}

func TestAssignClearsSelectionAndConsumesQueueEntry(t *testing.T) {
	svc, booking, queue, _ := newAssignmentFixture(map[int64]upstream.Snapshot{
		1: {Vehicle: standardVehicle(1)},
	})
	booking.assignRes = upstream.MutationResult{Success: true, TotalAmount: 45_000}
	booking.onAssign = func(req upstream.AssignRequest) {
		booking.occupy(req.VehicleID, req.Occupant, req.SeatNumbers...)
	}
	queue.entries["q1"] = domain.WaitingQueueEntry{ID: "q1", Name: "Jean", Contact: "0339999999", RequestedSeatCount: 1}

	seatMap, err := svc.Store.Load(context.Background(), 1, domain.ClassStandard)
	require.NoError(t, err)
	_, err = svc.Selection.Toggle(1, seatMap, 7)
	require.NoError(t, err)

	out, err := svc.Assign(context.Background(), 1, AssignInput{
		VehicleID:    1,
		SeatNumbers:  []int{7},
		Occupant:     domain.Occupant{Name: "Jean", Contact: "0339999999", PaymentMethod: domain.PayCash},
		QueueEntryID: "q1",
	})
	require.NoError(t, err)

	assert.Empty(t, svc.Selection.Selected(1))
	assert.True(t, out.QueueEntryRemoved)
	assert.Equal(t, []string{"q1"}, queue.deleted)
}

func TestAssignReceiptNumbersIncrement(t *testing.T) {
	svc, booking, _, _ := newAssignmentFixture(map[int64]upstream.Snapshot{
		1: {Vehicle: standardVehicle(1)},
	})
	booking.assignRes = upstream.MutationResult{Success: true}
	booking.onAssign = func(req upstream.AssignRequest) {
		booking.occupy(req.VehicleID, req.Occupant, req.SeatNumbers...)
	}
	occ := domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash}

	first, err := svc.Assign(context.Background(), 1, AssignInput{VehicleID: 1, SeatNumbers: []int{1}, Occupant: occ})
	require.NoError(t, err)
	second, err := svc.Assign(context.Background(), 1, AssignInput{VehicleID: 1, SeatNumbers: []int{2}, Occupant: occ})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.ReceiptNumber)
	assert.Equal(t, uint64(2), second.ReceiptNumber)
	assert.NotEqual(t, first.ReceiptRef, second.ReceiptRef)
}

func TestAssignUpstreamFailureStillRefetches(t *testing.T) {
	svc, booking, _, _ := newAssignmentFixture(map[int64]upstream.Snapshot{
		1: {Vehicle: standardVehicle(1)},
	})
	booking.assignErr = domain.UnavailableError{Msg: "connection reset"}

	out, err := svc.Assign(context.Background(), 1, AssignInput{
		VehicleID:   1,
		SeatNumbers: []int{3},
		Occupant:    domain.Occupant{Name: "Rasoa", Contact: "0341234567", PaymentMethod: domain.PayCash},
	})
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, 2, booking.fetchCalls)
	assert.Len(t, out.SeatMap.Seats, 16)
}
