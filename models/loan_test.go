package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"library-api/models"
)

func TestLoanStatusTransitions(t *testing.T) {
	assert.True(t, models.LoanBorrowed.CanTransitionTo(models.LoanReturned))
	assert.True(t, models.LoanBorrowed.CanTransitionTo(models.LoanOverdue))
	assert.True(t, models.LoanBorrowed.CanTransitionTo(models.LoanLost))
	assert.True(t, models.LoanOverdue.CanTransitionTo(models.LoanReturned))
	assert.True(t, models.LoanOverdue.CanTransitionTo(models.LoanLost))

	assert.False(t, models.LoanOverdue.CanTransitionTo(models.LoanBorrowed))
	assert.False(t, models.LoanReturned.CanTransitionTo(models.LoanBorrowed))
	assert.False(t, models.LoanLost.CanTransitionTo(models.LoanReturned))
	assert.True(t, models.LoanReturned.Terminal())
	assert.True(t, models.LoanLost.Terminal())
}

func TestLoanIsOverdue(t *testing.T) {
	today := models.Today()
	loan := models.Loan{Status: models.LoanBorrowed, DueDate: today.AddDays(-1)}
	assert.True(t, loan.IsOverdue(today))

	loan.DueDate = today
	assert.False(t, loan.IsOverdue(today))

	loan.DueDate = today.AddDays(-1)
	loan.Status = models.LoanReturned
	assert.False(t, loan.IsOverdue(today))
}
