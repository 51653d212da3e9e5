package memory

import (
	"context"
	"sort"
	"time"

	"library-api/models"
	"library-api/store"
)

func (s *Store) InsertLoan(ctx context.Context, loan *models.Loan) (int64, error) {
	defer s.lock(ctx)()

	now := time.Now()
	loan.ID = s.nextLoanID
	loan.CreatedAt = now
	loan.UpdatedAt = now
	s.nextLoanID++

	s.loans[loan.ID] = cloneLoan(*loan)
	return loan.ID, nil
}

func (s *Store) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	defer s.lock(ctx)()

	if _, ok := s.loans[loan.ID]; !ok {
		return store.ErrNotFound
	}
	loan.UpdatedAt = time.Now()
	s.loans[loan.ID] = cloneLoan(*loan)
	return nil
}

func (s *Store) DeleteLoan(ctx context.Context, id int64) error {
	defer s.lock(ctx)()

	if _, ok := s.loans[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.loans, id)
	return nil
}

func (s *Store) LoanByID(ctx context.Context, id int64) (*models.Loan, error) {
	defer s.lock(ctx)()

	l, ok := s.loans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	loan := cloneLoan(l)
	s.attachNames(&loan)
	return &loan, nil
}

func (s *Store) Loans(ctx context.Context, filter store.LoanFilter) ([]models.Loan, error) {
	defer s.lock(ctx)()

	return s.collect(func(l models.Loan) bool {
		if filter.MemberID != 0 && l.MemberID != filter.MemberID {
			return false
		}
		if filter.BookID != 0 && l.BookID != filter.BookID {
			return false
		}
		if filter.Status != "" && l.Status != filter.Status {
			return false
		}
		if !filter.From.IsZero() && l.BorrowDate.Before(filter.From.Time) {
			return false
		}
		if !filter.To.IsZero() && l.BorrowDate.After(filter.To.Time) {
			return false
		}
		return true
	}), nil
}

func (s *Store) OverdueLoans(ctx context.Context, today models.Date) ([]models.Loan, error) {
	defer s.lock(ctx)()

	return s.collect(func(l models.Loan) bool {
		return l.Status == models.LoanBorrowed && l.DueDate.Before(today.Time)
	}), nil
}

func (s *Store) LoansDueOn(ctx context.Context, date models.Date) ([]models.Loan, error) {
	defer s.lock(ctx)()

	return s.collect(func(l models.Loan) bool {
		return l.Status == models.LoanBorrowed && l.DueDate.Equal(date.Time)
	}), nil
}

func (s *Store) ActiveLoansByMember(ctx context.Context, memberID int64) ([]models.Loan, error) {
	defer s.lock(ctx)()

	return s.collect(func(l models.Loan) bool {
		return l.MemberID == memberID && l.Status != models.LoanReturned
	}), nil
}

func (s *Store) CountActiveByMember(ctx context.Context, memberID int64) (int64, error) {
	defer s.lock(ctx)()

	var count int64
	for _, l := range s.loans {
		if l.MemberID == memberID && l.Status == models.LoanBorrowed {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountActiveByBook(ctx context.Context, bookID int64) (int64, error) {
	defer s.lock(ctx)()

	var count int64
	for _, l := range s.loans {
		if l.BookID == bookID && l.Status == models.LoanBorrowed {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountBorrowed(ctx context.Context) (int64, error) {
	return s.countByStatus(ctx, models.LoanBorrowed)
}

func (s *Store) CountOverdue(ctx context.Context) (int64, error) {
	return s.countByStatus(ctx, models.LoanOverdue)
}

func (s *Store) countByStatus(ctx context.Context, status models.LoanStatus) (int64, error) {
	defer s.lock(ctx)()

	var count int64
	for _, l := range s.loans {
		if l.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *Store) collect(match func(models.Loan) bool) []models.Loan {
	loans := []models.Loan{}
	for _, l := range s.loans {
		if !match(l) {
			continue
		}
		loan := cloneLoan(l)
		s.attachNames(&loan)
		loans = append(loans, loan)
	}
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].BorrowDate.Equal(loans[j].BorrowDate.Time) {
			return loans[i].BorrowDate.After(loans[j].BorrowDate.Time)
		}
		return loans[i].ID > loans[j].ID
	})
	return loans
}

func (s *Store) attachNames(loan *models.Loan) {
	if m, ok := s.members[loan.MemberID]; ok {
		loan.MemberName = m.Name
	}
	if b, ok := s.books[loan.BookID]; ok {
		loan.BookTitle = b.Title
	}
}
