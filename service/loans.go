package service

import (
	"context"
	"errors"

	"library-api/models"
	"library-api/store"
)

const (
	// defaultLoanPeriodDays is applied when a borrow request carries no due date.
	defaultLoanPeriodDays = 14

	maxNotesLen = 500
)

// LoanService is the loan ledger. Every mutation that touches a book's copy
// counter runs inside one transaction spanning the loan record and the
// counter row, so partial failures roll back together.
type LoanService struct {
	tx      TxRunner
	loans   LoanStore
	books   BookStore
	members MemberStore
}

func NewLoanService(tx TxRunner, loans LoanStore, books BookStore, members MemberStore) *LoanService {
	return &LoanService{tx: tx, loans: loans, books: books, members: members}
}

type BorrowRequest struct {
	MemberID int64        `json:"memberId"`
	BookID   int64        `json:"bookId"`
	DueDate  *models.Date `json:"dueDate"`
	Notes    string       `json:"notes"`
}

// Borrow checks out one copy of a book to a member. Preconditions, in order:
// member exists and is ACTIVE with fewer than MaxActiveLoans BORROWED loans,
// book exists with an available copy. The counter decrement and the record
// insert commit or roll back as one unit.
func (s *LoanService) Borrow(ctx context.Context, req BorrowRequest) (*models.Loan, error) {
	var loan *models.Loan

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		member, err := s.members.MemberByID(ctx, req.MemberID)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundf("member not found with id: %d", req.MemberID)
		}
		if err != nil {
			return err
		}
		if !member.IsActive() {
			return ineligiblef("member %d is %s and cannot borrow books", member.ID, member.Status)
		}
		active, err := s.loans.CountActiveByMember(ctx, member.ID)
		if err != nil {
			return err
		}
		if active >= MaxActiveLoans {
			return ineligiblef("member %d has reached the borrow limit of %d books", member.ID, MaxActiveLoans)
		}

		book, err := s.books.BookByIDForUpdate(ctx, req.BookID)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundf("book not found with id: %d", req.BookID)
		}
		if err != nil {
			return err
		}
		if !book.IsAvailable() {
			return unavailablef("book %q has no available copies", book.Title)
		}

		today := models.Today()
		dueDate := today.AddDays(defaultLoanPeriodDays)
		if req.DueDate != nil && !req.DueDate.IsZero() {
			dueDate = *req.DueDate
		}
		if dueDate.Before(today.Time) {
			return validationf("due date cannot be before borrow date")
		}
		if len(req.Notes) > maxNotesLen {
			return validationf("notes must not exceed %d characters", maxNotesLen)
		}

		if err := s.books.UpdateBookCopies(ctx, book.ID, book.AvailableCopies-1, book.TotalCopies); err != nil {
			return err
		}

		loan = &models.Loan{
			MemberID:   member.ID,
			BookID:     book.ID,
			BorrowDate: today,
			DueDate:    dueDate,
			Status:     models.LoanBorrowed,
			Notes:      req.Notes,
		}
		id, err := s.loans.InsertLoan(ctx, loan)
		if err != nil {
			return err
		}
		loan.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return closes a loan. The copy goes back into the available pool, capped at
// totalCopies so a stray double-return can never overfill it.
func (s *LoanService) Return(ctx context.Context, id int64, returnDate *models.Date) (*models.Loan, error) {
	var loan *models.Loan

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.getLoan(ctx, id)
		if err != nil {
			return err
		}
		if loan.Status == models.LoanReturned {
			return invalidStatef("loan %d has already been returned", id)
		}
		if !loan.Status.CanTransitionTo(models.LoanReturned) {
			return invalidStatef("loan %d is %s and cannot be returned", id, loan.Status)
		}

		rd := models.Today()
		if returnDate != nil && !returnDate.IsZero() {
			rd = *returnDate
		}
		if rd.Before(loan.BorrowDate.Time) {
			return validationf("return date cannot be before borrow date")
		}

		loan.ReturnDate = &rd
		loan.Status = models.LoanReturned
		if err := s.loans.UpdateLoan(ctx, loan); err != nil {
			return err
		}
		return s.restoreCopy(ctx, loan.BookID)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// MarkLost transitions a loan to LOST. The copy is not restored: a lost book
// stays out of the available pool until the catalog record is edited.
func (s *LoanService) MarkLost(ctx context.Context, id int64) (*models.Loan, error) {
	var loan *models.Loan

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.getLoan(ctx, id)
		if err != nil {
			return err
		}
		if !loan.Status.CanTransitionTo(models.LoanLost) {
			return invalidStatef("loan %d is %s and cannot be marked lost", id, loan.Status)
		}
		loan.Status = models.LoanLost
		return s.loans.UpdateLoan(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// MarkOverdue sweeps all BORROWED loans whose due date has passed into
// OVERDUE and returns how many were transitioned. Re-running is a no-op for
// loans already swept. Copy counters are untouched.
func (s *LoanService) MarkOverdue(ctx context.Context) (int, error) {
	marked := 0

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		candidates, err := s.loans.OverdueLoans(ctx, models.Today())
		if err != nil {
			return err
		}
		for i := range candidates {
			loan := &candidates[i]
			if loan.Status != models.LoanBorrowed {
				continue
			}
			loan.Status = models.LoanOverdue
			if err := s.loans.UpdateLoan(ctx, loan); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

type UpdateLoanRequest struct {
	DueDate *models.Date       `json:"dueDate"`
	Notes   *string            `json:"notes"`
	Status  *models.LoanStatus `json:"status"`
}

// Update patches due date, notes, and status. Status changes go through the
// same transition table as the dedicated operations; moving to RETURNED
// applies the full return side effects.
func (s *LoanService) Update(ctx context.Context, id int64, req UpdateLoanRequest) (*models.Loan, error) {
	var loan *models.Loan

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.getLoan(ctx, id)
		if err != nil {
			return err
		}

		if req.DueDate != nil && !req.DueDate.IsZero() {
			if req.DueDate.Before(loan.BorrowDate.Time) {
				return validationf("due date cannot be before borrow date")
			}
			loan.DueDate = *req.DueDate
		}
		if req.Notes != nil {
			if len(*req.Notes) > maxNotesLen {
				return validationf("notes must not exceed %d characters", maxNotesLen)
			}
			loan.Notes = *req.Notes
		}

		if req.Status != nil && *req.Status != loan.Status {
			if !req.Status.Valid() {
				return validationf("invalid loan status: %s", *req.Status)
			}
			if !loan.Status.CanTransitionTo(*req.Status) {
				return invalidStatef("loan %d cannot transition from %s to %s", id, loan.Status, *req.Status)
			}
			if *req.Status == models.LoanReturned {
				rd := models.Today()
				loan.ReturnDate = &rd
				if err := s.restoreCopy(ctx, loan.BookID); err != nil {
					return err
				}
			}
			loan.Status = *req.Status
		}

		return s.loans.UpdateLoan(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Delete removes a loan record. A BORROWED loan gives its copy back first so
// the copy does not leak out of the available pool forever.
func (s *LoanService) Delete(ctx context.Context, id int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		loan, err := s.getLoan(ctx, id)
		if err != nil {
			return err
		}
		if loan.Status == models.LoanBorrowed {
			if err := s.restoreCopy(ctx, loan.BookID); err != nil {
				return err
			}
		}
		return s.loans.DeleteLoan(ctx, id)
	})
}

func (s *LoanService) Get(ctx context.Context, id int64) (*models.Loan, error) {
	return s.getLoan(ctx, id)
}

func (s *LoanService) List(ctx context.Context, filter store.LoanFilter) ([]models.Loan, error) {
	return s.loans.Loans(ctx, filter)
}

func (s *LoanService) ByMember(ctx context.Context, memberID int64) ([]models.Loan, error) {
	return s.loans.Loans(ctx, store.LoanFilter{MemberID: memberID})
}

func (s *LoanService) ActiveByMember(ctx context.Context, memberID int64) ([]models.Loan, error) {
	return s.loans.ActiveLoansByMember(ctx, memberID)
}

func (s *LoanService) ByBook(ctx context.Context, bookID int64) ([]models.Loan, error) {
	return s.loans.Loans(ctx, store.LoanFilter{BookID: bookID})
}

func (s *LoanService) Overdue(ctx context.Context) ([]models.Loan, error) {
	return s.loans.OverdueLoans(ctx, models.Today())
}

func (s *LoanService) DueOn(ctx context.Context, date models.Date) ([]models.Loan, error) {
	return s.loans.LoansDueOn(ctx, date)
}

func (s *LoanService) CountBorrowed(ctx context.Context) (int64, error) {
	return s.loans.CountBorrowed(ctx)
}

func (s *LoanService) CountOverdue(ctx context.Context) (int64, error) {
	return s.loans.CountOverdue(ctx)
}

func (s *LoanService) getLoan(ctx context.Context, id int64) (*models.Loan, error) {
	loan, err := s.loans.LoanByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("borrowed book record not found with id: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// restoreCopy puts one copy back into the book's available pool, never
// exceeding totalCopies. Must run inside a transaction.
func (s *LoanService) restoreCopy(ctx context.Context, bookID int64) error {
	book, err := s.books.BookByIDForUpdate(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return notFoundf("book not found with id: %d", bookID)
	}
	if err != nil {
		return err
	}
	if book.AvailableCopies < book.TotalCopies {
		return s.books.UpdateBookCopies(ctx, book.ID, book.AvailableCopies+1, book.TotalCopies)
	}
	return nil
}
