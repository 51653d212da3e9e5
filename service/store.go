package service

import (
	"context"

	"library-api/models"
	"library-api/store"
)

// TxRunner executes fn atomically. Store methods called with the ctx passed to
// fn take part in the same transaction; any error rolls everything back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) (int64, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	UpdateBookCopies(ctx context.Context, id int64, available, total int) error
	DeleteBook(ctx context.Context, id int64) error
	BookByID(ctx context.Context, id int64) (*models.Book, error)
	// BookByIDForUpdate locks the book row for the duration of the enclosing
	// transaction so concurrent copy-counter updates serialize.
	BookByIDForUpdate(ctx context.Context, id int64) (*models.Book, error)
	BookByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Books(ctx context.Context, filter store.BookFilter) ([]models.Book, error)
	Categories(ctx context.Context) ([]string, error)
}

type AuthorStore interface {
	InsertAuthor(ctx context.Context, author *models.Author) (int64, error)
	UpdateAuthor(ctx context.Context, author *models.Author) error
	DeleteAuthor(ctx context.Context, id int64) error
	AuthorByID(ctx context.Context, id int64) (*models.Author, error)
	AuthorByName(ctx context.Context, name string) (*models.Author, error)
	Authors(ctx context.Context, filter store.AuthorFilter) ([]models.Author, error)
	CountBooksByAuthor(ctx context.Context, authorID int64) (int64, error)
}

type MemberStore interface {
	InsertMember(ctx context.Context, member *models.Member) (int64, error)
	UpdateMember(ctx context.Context, member *models.Member) error
	DeleteMember(ctx context.Context, id int64) error
	MemberByID(ctx context.Context, id int64) (*models.Member, error)
	MemberByEmail(ctx context.Context, email string) (*models.Member, error)
	Members(ctx context.Context, filter store.MemberFilter) ([]models.Member, error)
}

type LoanStore interface {
	InsertLoan(ctx context.Context, loan *models.Loan) (int64, error)
	UpdateLoan(ctx context.Context, loan *models.Loan) error
	DeleteLoan(ctx context.Context, id int64) error
	LoanByID(ctx context.Context, id int64) (*models.Loan, error)
	Loans(ctx context.Context, filter store.LoanFilter) ([]models.Loan, error)
	OverdueLoans(ctx context.Context, today models.Date) ([]models.Loan, error)
	LoansDueOn(ctx context.Context, date models.Date) ([]models.Loan, error)
	ActiveLoansByMember(ctx context.Context, memberID int64) ([]models.Loan, error)
	CountActiveByMember(ctx context.Context, memberID int64) (int64, error)
	CountActiveByBook(ctx context.Context, bookID int64) (int64, error)
	CountBorrowed(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context) (int64, error)
}
