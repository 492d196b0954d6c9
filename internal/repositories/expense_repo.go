package repositories

import (
	"database/sql"
	"strings"

	intconfig "backoffice/internal/config"
	"backoffice/internal/domain"
)

// Expense is one back-office cash outflow (fuel, repairs, station fees).
type Expense struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	Category    string `json:"category"`
	Amount      int64  `json:"amount"`
	VehicleCode string `json:"vehicleCode,omitempty"`
	SpentOn     string `json:"spentOn"`
}

type ExpenseRepo struct {
	DB *sql.DB
}

func (r ExpenseRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// List returns expenses, optionally filtered to one YYYY-MM month.
func (r ExpenseRepo) List(month string) ([]Expense, error) {
	query := `
		SELECT id, label, COALESCE(category,''), amount, COALESCE(vehicle_code,''), DATE_FORMAT(spent_on, '%Y-%m-%d')
		FROM expenses
	`
	args := []any{}
	if m := strings.TrimSpace(month); m != "" {
		query += ` WHERE DATE_FORMAT(spent_on, '%Y-%m') = ?`
		args = append(args, m)
	}
	query += ` ORDER BY spent_on DESC, id DESC`

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Expense{}
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Label, &e.Category, &e.Amount, &e.VehicleCode, &e.SpentOn); err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r ExpenseRepo) Insert(e Expense) (int64, error) {
	if strings.TrimSpace(e.Label) == "" {
		return 0, domain.ValidationError{Field: "label", Msg: "label is required"}
	}
	if e.Amount <= 0 {
		return 0, domain.ValidationError{Field: "amount", Msg: "amount must be positive"}
	}
	res, err := r.db().Exec(`
		INSERT INTO expenses (label, category, amount, vehicle_code, spent_on, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())
	`, strings.TrimSpace(e.Label), strings.TrimSpace(e.Category), e.Amount, strings.TrimSpace(e.VehicleCode), e.SpentOn)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ExpenseRepo) Delete(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	_, err := r.db().Exec(`DELETE FROM expenses WHERE id = ?`, id)
	return err
}

// SumByMonth totals expenses for one YYYY-MM month.
func (r ExpenseRepo) SumByMonth(month string) (int64, error) {
	var total sql.NullInt64
	err := r.db().QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE DATE_FORMAT(spent_on, '%Y-%m') = ?
	`, strings.TrimSpace(month)).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
