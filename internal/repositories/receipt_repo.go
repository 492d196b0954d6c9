package repositories

import (
	"database/sql"
	"strings"

	intconfig "backoffice/internal/config"
)

// ReceiptRecord is one confirmed assignment, persisted for the monthly cash
// closing. Amount is always the backend-confirmed total, never a client-side
// fare preview.
type ReceiptRecord struct {
	ID           int64  `json:"id"`
	Reference    string `json:"reference"`
	VehicleID    int64  `json:"vehicleId"`
	SeatNumbers  string `json:"seatNumbers"`
	OccupantName string `json:"occupantName"`
	Amount       int64  `json:"amount"`
	IssuedOn     string `json:"issuedOn"`
}

type ReceiptRepo struct {
	DB *sql.DB
}

func (r ReceiptRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ReceiptRepo) Insert(rec ReceiptRecord) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO receipts (reference, vehicle_id, seat_numbers, occupant_name, amount, issued_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
	`, strings.TrimSpace(rec.Reference), rec.VehicleID, rec.SeatNumbers, strings.TrimSpace(rec.OccupantName), rec.Amount, rec.IssuedOn)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SumByMonth totals confirmed receipts for one YYYY-MM month.
func (r ReceiptRepo) SumByMonth(month string) (int64, error) {
	var total sql.NullInt64
	err := r.db().QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM receipts
		WHERE DATE_FORMAT(issued_on, '%Y-%m') = ?
	`, strings.TrimSpace(month)).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
