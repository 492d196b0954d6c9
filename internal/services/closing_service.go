package services

import (
	"fmt"

	"backoffice/internal/domain"
	"backoffice/internal/utils"
)

// MonthSummer is implemented by repositories.ReceiptRepo and
// repositories.ExpenseRepo.
type MonthSummer interface {
	SumByMonth(month string) (int64, error)
}

// ClosingService produces the monthly cash closing: confirmed receipts in,
// expenses out, balance.
type ClosingService struct {
	Receipts  MonthSummer
	Expenses  MonthSummer
	RequestID string
}

type MonthlyClosing struct {
	Month         string `json:"month"`
	ReceiptsTotal int64  `json:"receiptsTotal"`
	ExpensesTotal int64  `json:"expensesTotal"`
	Balance       int64  `json:"balance"`
}

func (s ClosingService) Closing(month string) (MonthlyClosing, error) {
	var out MonthlyClosing

	if _, err := utils.ParseMonth(month); err != nil {
		return out, domain.ValidationError{Field: "month", Msg: "month must be YYYY-MM"}
	}

	receipts, err := s.Receipts.SumByMonth(month)
	if err != nil {
		return out, fmt.Errorf("sum receipts: %w", err)
	}
	expenses, err := s.Expenses.SumByMonth(month)
	if err != nil {
		return out, fmt.Errorf("sum expenses: %w", err)
	}

	out.Month = month
	out.ReceiptsTotal = receipts
	out.ExpensesTotal = expenses
	out.Balance = receipts - expenses

	utils.LogEvent(s.RequestID, "closing", "computed",
		fmt.Sprintf("month=%s balance=%d", month, out.Balance))
	return out, nil
}
