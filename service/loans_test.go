package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/models"
	"library-api/service"
	"library-api/store/memory"
)

type fixture struct {
	st      *memory.Store
	loans   *service.LoanService
	books   *service.BookService
	members *service.MemberService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	return &fixture{
		st:      st,
		loans:   service.NewLoanService(st, st, st, st),
		books:   service.NewBookService(st, st, st),
		members: service.NewMemberService(st, st),
	}
}

func (f *fixture) addBook(t *testing.T, title string, copies int) *models.Book {
	t.Helper()
	ctx := context.Background()
	authorID, err := f.st.InsertAuthor(ctx, &models.Author{Name: "Author of " + title})
	require.NoError(t, err)
	book := &models.Book{
		Title:           title,
		Category:        "Fiction",
		PublishingYear:  2001,
		AuthorID:        authorID,
		TotalCopies:     copies,
		AvailableCopies: copies,
	}
	id, err := f.st.InsertBook(ctx, book)
	require.NoError(t, err)
	book.ID = id
	return book
}

func (f *fixture) addMember(t *testing.T, name string, status models.MembershipStatus) *models.Member {
	t.Helper()
	member := &models.Member{
		Name:   name,
		Email:  name + "@example.com",
		Status: status,
	}
	id, err := f.st.InsertMember(context.Background(), member)
	require.NoError(t, err)
	member.ID = id
	return member
}

func (f *fixture) book(t *testing.T, id int64) *models.Book {
	t.Helper()
	book, err := f.st.BookByID(context.Background(), id)
	require.NoError(t, err)
	return book
}

func TestBorrow_DecrementsAvailableCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "The Trial", 3)
	member := f.addMember(t, "anna", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	assert.Equal(t, models.LoanBorrowed, loan.Status)
	assert.Equal(t, models.Today(), loan.BorrowDate)
	assert.Equal(t, models.Today().AddDays(14), loan.DueDate)
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, 2, f.book(t, book.ID).AvailableCopies)
}

func TestBorrow_ExplicitDueDate(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "Dune", 1)
	member := f.addMember(t, "paul", models.MemberActive)

	due := models.Today().AddDays(30)
	loan, err := f.loans.Borrow(context.Background(), service.BorrowRequest{
		MemberID: member.ID, BookID: book.ID, DueDate: &due,
	})
	require.NoError(t, err)
	assert.Equal(t, due, loan.DueDate)
}

func TestBorrow_DueDateBeforeToday(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "Dune", 1)
	member := f.addMember(t, "paul", models.MemberActive)

	due := models.Today().AddDays(-1)
	_, err := f.loans.Borrow(context.Background(), service.BorrowRequest{
		MemberID: member.ID, BookID: book.ID, DueDate: &due,
	})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
	assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)
}

func TestBorrow_UnknownMember(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "Dune", 1)

	_, err := f.loans.Borrow(context.Background(), service.BorrowRequest{MemberID: 99, BookID: book.ID})
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestBorrow_SuspendedMember(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "Dune", 1)
	member := f.addMember(t, "sam", models.MemberSuspended)

	_, err := f.loans.Borrow(context.Background(), service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	assert.Equal(t, service.KindIneligible, service.KindOf(err))
	assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)
}

func TestBorrow_NoAvailableCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "Rare Book", 1)
	first := f.addMember(t, "first", models.MemberActive)
	second := f.addMember(t, "second", models.MemberActive)

	_, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: first.ID, BookID: book.ID})
	require.NoError(t, err)

	_, err = f.loans.Borrow(ctx, service.BorrowRequest{MemberID: second.ID, BookID: book.ID})
	assert.Equal(t, service.KindUnavailable, service.KindOf(err))
	assert.Equal(t, 0, f.book(t, book.ID).AvailableCopies)
}

func TestBorrow_LimitOfFiveActiveLoans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "heavy-reader", models.MemberActive)

	for i := 0; i < service.MaxActiveLoans; i++ {
		book := f.addBook(t, "Volume", 1)
		_, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
		require.NoError(t, err)
	}

	extra := f.addBook(t, "One Too Many", 1)
	_, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: extra.ID})
	assert.Equal(t, service.KindIneligible, service.KindOf(err))

	eligible, err := f.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestReturn_RestoresCopyAndClosesLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "The Trial", 2)
	member := f.addMember(t, "anna", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)

	returned, err := f.loans.Return(ctx, loan.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, models.Today(), *returned.ReturnDate)
	assert.Equal(t, 2, f.book(t, book.ID).AvailableCopies)
}

func TestReturn_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "The Trial", 2)
	member := f.addMember(t, "anna", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	_, err = f.loans.Return(ctx, loan.ID, nil)
	require.NoError(t, err)

	_, err = f.loans.Return(ctx, loan.ID, nil)
	assert.Equal(t, service.KindInvalidState, service.KindOf(err))
	// the pool must not overfill
	assert.Equal(t, 2, f.book(t, book.ID).AvailableCopies)
}

func TestReturn_DateBeforeBorrowDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "The Trial", 1)
	member := f.addMember(t, "anna", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	rd := models.Today().AddDays(-1)
	_, err = f.loans.Return(ctx, loan.ID, &rd)
	assert.Equal(t, service.KindValidation, service.KindOf(err))
	assert.Equal(t, 0, f.book(t, book.ID).AvailableCopies)
}

func TestMarkLost_KeepsCopyOutOfPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "Fragile", 1)
	member := f.addMember(t, "clumsy", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	lost, err := f.loans.MarkLost(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanLost, lost.Status)
	assert.Equal(t, 0, f.book(t, book.ID).AvailableCopies)

	// terminal: no way back
	_, err = f.loans.Return(ctx, loan.ID, nil)
	assert.Equal(t, service.KindInvalidState, service.KindOf(err))
	_, err = f.loans.MarkLost(ctx, loan.ID)
	assert.Equal(t, service.KindInvalidState, service.KindOf(err))
}

func TestMarkOverdue_SweepIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "anna", models.MemberActive)
	overdueBook := f.addBook(t, "Late Book", 1)
	currentBook := f.addBook(t, "Fresh Book", 1)

	late, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: overdueBook.ID})
	require.NoError(t, err)
	_, err = f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: currentBook.ID})
	require.NoError(t, err)

	// backdate the first loan past its due date
	past := models.Today().AddDays(-1)
	late.DueDate = past
	require.NoError(t, f.st.UpdateLoan(ctx, late))

	marked, err := f.loans.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	swept, err := f.loans.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanOverdue, swept.Status)

	marked, err = f.loans.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)

	// an overdue loan can still be returned
	returned, err := f.loans.Return(ctx, late.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, returned.Status)
	assert.Equal(t, 1, f.book(t, overdueBook.ID).AvailableCopies)
}

func TestUpdate_StatusToReturnedAppliesSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "The Trial", 1)
	member := f.addMember(t, "anna", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	status := models.LoanReturned
	updated, err := f.loans.Update(ctx, loan.ID, service.UpdateLoanRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, updated.Status)
	require.NotNil(t, updated.ReturnDate)
	assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)
}

func TestUpdate_RejectsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "The Trial", 1)
	member := f.addMember(t, "anna", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	_, err = f.loans.Return(ctx, loan.ID, nil)
	require.NoError(t, err)

	status := models.LoanBorrowed
	_, err = f.loans.Update(ctx, loan.ID, service.UpdateLoanRequest{Status: &status})
	assert.Equal(t, service.KindInvalidState, service.KindOf(err))
}

func TestUpdate_RollsBackDueDateOnInvalidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "The Trial", 1)
	member := f.addMember(t, "anna", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	_, err = f.loans.MarkLost(ctx, loan.ID)
	require.NoError(t, err)

	due := models.Today().AddDays(60)
	status := models.LoanBorrowed
	_, err = f.loans.Update(ctx, loan.ID, service.UpdateLoanRequest{DueDate: &due, Status: &status})
	assert.Equal(t, service.KindInvalidState, service.KindOf(err))

	unchanged, err := f.loans.Get(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.DueDate, unchanged.DueDate)
}

func TestDelete_RestoresCopyForActiveLoanOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "The Trial", 1)
	member := f.addMember(t, "anna", models.MemberActive)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	require.NoError(t, f.loans.Delete(ctx, loan.ID))
	assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)

	loan, err = f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	_, err = f.loans.Return(ctx, loan.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.loans.Delete(ctx, loan.ID))
	assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)
}

func TestLoanListsAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "A", 2)
	other := f.addBook(t, "B", 1)
	anna := f.addMember(t, "anna", models.MemberActive)
	ben := f.addMember(t, "ben", models.MemberActive)

	first, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: anna.ID, BookID: book.ID})
	require.NoError(t, err)
	_, err = f.loans.Borrow(ctx, service.BorrowRequest{MemberID: anna.ID, BookID: other.ID})
	require.NoError(t, err)
	_, err = f.loans.Borrow(ctx, service.BorrowRequest{MemberID: ben.ID, BookID: book.ID})
	require.NoError(t, err)

	byAnna, err := f.loans.ByMember(ctx, anna.ID)
	require.NoError(t, err)
	assert.Len(t, byAnna, 2)

	byBook, err := f.loans.ByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, byBook, 2)

	borrowed, err := f.loans.CountBorrowed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), borrowed)

	_, err = f.loans.Return(ctx, first.ID, nil)
	require.NoError(t, err)

	active, err := f.loans.ActiveByMember(ctx, anna.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	dueOn, err := f.loans.DueOn(ctx, models.Today().AddDays(14))
	require.NoError(t, err)
	assert.Len(t, dueOn, 2)
}
