package handlers

import (
	"net/http"

	"backoffice/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/expenses?month=2026-09
func (a API) ListExpenses(c *gin.Context) {
	expenses, err := a.Expenses.List(c.Query("month"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// POST /api/expenses
func (a API) CreateExpense(c *gin.Context) {
	var req repositories.Expense
	if !BindJSONOrError(c, &req) {
		return
	}

	id, err := a.Expenses.Insert(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	req.ID = id
	c.JSON(http.StatusCreated, req)
}

// DELETE /api/expenses/:id
func (a API) DeleteExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := a.Expenses.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense removed"})
}

// GET /api/closings/:month
func (a API) GetMonthlyClosing(c *gin.Context) {
	closing, err := a.Closing.Closing(c.Param("month"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, closing)
}
