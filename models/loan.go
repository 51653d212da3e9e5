package models

import "time"

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "BORROWED"
	LoanOverdue  LoanStatus = "OVERDUE"
	LoanReturned LoanStatus = "RETURNED"
	LoanLost     LoanStatus = "LOST"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanBorrowed, LoanOverdue, LoanReturned, LoanLost:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s LoanStatus) Terminal() bool {
	return s == LoanReturned || s == LoanLost
}

// CanTransitionTo is the single transition table for loan records:
// BORROWED -> {RETURNED, OVERDUE, LOST}, OVERDUE -> {RETURNED, LOST}.
func (s LoanStatus) CanTransitionTo(to LoanStatus) bool {
	switch s {
	case LoanBorrowed:
		return to == LoanReturned || to == LoanOverdue || to == LoanLost
	case LoanOverdue:
		return to == LoanReturned || to == LoanLost
	}
	return false
}

// Loan is a borrowed-book record tying one member to one book copy.
// BookTitle and MemberName are filled from joins on reads, never stored.
type Loan struct {
	ID         int64      `json:"id"`
	MemberID   int64      `json:"memberId"`
	BookID     int64      `json:"bookId"`
	MemberName string     `json:"memberName,omitempty"`
	BookTitle  string     `json:"bookTitle,omitempty"`
	BorrowDate Date       `json:"borrowDate"`
	DueDate    Date       `json:"dueDate"`
	ReturnDate *Date      `json:"returnDate"`
	Status     LoanStatus `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// IsOverdue reports whether the loan is past due and the copy is still out.
func (l *Loan) IsOverdue(today Date) bool {
	return l.Status == LoanBorrowed && l.DueDate.Before(today.Time)
}
