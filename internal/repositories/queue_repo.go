package repositories

import (
	"database/sql"
	"strings"

	intconfig "backoffice/internal/config"
	"backoffice/internal/domain"
)

// WaitingQueueRepo persists the waiting list of clients not yet assigned to
// a seat. Insertion order is kept for FIFO display; the backend is never
// assumed to enforce queue fairness.
type WaitingQueueRepo struct {
	DB *sql.DB
}

func (r WaitingQueueRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r WaitingQueueRepo) List() ([]domain.WaitingQueueEntry, error) {
	rows, err := r.db().Query(`
		SELECT id, name, contact, seat_count, travel_date, travel_time, is_vip
		FROM waiting_queue
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.WaitingQueueEntry{}
	for rows.Next() {
		var e domain.WaitingQueueEntry
		var date, tm sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Contact, &e.RequestedSeatCount, &date, &tm, &e.IsVIP); err != nil {
			return out, err
		}
		e.Date = strings.TrimSpace(date.String)
		e.Time = strings.TrimSpace(tm.String)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r WaitingQueueRepo) Get(id string) (domain.WaitingQueueEntry, error) {
	var e domain.WaitingQueueEntry
	var date, tm sql.NullString
	err := r.db().QueryRow(`
		SELECT id, name, contact, seat_count, travel_date, travel_time, is_vip
		FROM waiting_queue
		WHERE id = ?
	`, strings.TrimSpace(id)).Scan(&e.ID, &e.Name, &e.Contact, &e.RequestedSeatCount, &date, &tm, &e.IsVIP)
	if err != nil {
		if err == sql.ErrNoRows {
			return e, domain.NotFoundError{Resource: "waiting queue entry"}
		}
		return e, err
	}
	e.Date = strings.TrimSpace(date.String)
	e.Time = strings.TrimSpace(tm.String)
	return e, nil
}

func (r WaitingQueueRepo) Insert(e domain.WaitingQueueEntry) error {
	_, err := r.db().Exec(`
		INSERT INTO waiting_queue (id, name, contact, seat_count, travel_date, travel_time, is_vip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
	`, e.ID, strings.TrimSpace(e.Name), strings.TrimSpace(e.Contact), e.RequestedSeatCount, e.Date, e.Time, e.IsVIP)
	return err
}

// Delete removes a consumed or staff-deleted entry. Deleting an id that is
// already gone is not an error.
func (r WaitingQueueRepo) Delete(id string) error {
	_, err := r.db().Exec(`DELETE FROM waiting_queue WHERE id = ?`, strings.TrimSpace(id))
	return err
}
