package repositories

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestReceiptInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO receipts").
		WithArgs("RCT-1-AB12CD34", int64(1), "3,4", "Rasoa", int64(90000), "2026-09-01").
		WillReturnResult(sqlmock.NewResult(11, 1))

	repo := ReceiptRepo{DB: db}
	id, err := repo.Insert(ReceiptRecord{
		Reference:    "RCT-1-AB12CD34",
		VehicleID:    1,
		SeatNumbers:  "3,4",
		OccupantName: " Rasoa ",
		Amount:       90000,
		IssuedOn:     "2026-09-01",
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}
	if id != 11 {
		t.Fatalf("expected id 11, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReceiptSumByMonth(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\)").
		WithArgs("2026-08").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1260000))

	repo := ReceiptRepo{DB: db}
	total, err := repo.SumByMonth("2026-08")
	if err != nil {
		t.Fatalf("sum error: %v", err)
	}
	if total != 1260000 {
		t.Fatalf("expected 1260000, got %d", total)
	}
}
