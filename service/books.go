package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"library-api/models"
	"library-api/store"
)

type BookService struct {
	tx    TxRunner
	books BookStore
	loans LoanStore
}

func NewBookService(tx TxRunner, books BookStore, loans LoanStore) *BookService {
	return &BookService{tx: tx, books: books, loans: loans}
}

func (s *BookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	return s.getBook(ctx, id)
}

func (s *BookService) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	book, err := s.books.BookByISBN(ctx, isbn)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("book not found with isbn: %s", isbn)
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) List(ctx context.Context, filter store.BookFilter) ([]models.Book, error) {
	return s.books.Books(ctx, filter)
}

func (s *BookService) Categories(ctx context.Context) ([]string, error) {
	return s.books.Categories(ctx)
}

// Create registers a book. Copy counts default to one copy, fully available.
func (s *BookService) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if book.TotalCopies <= 0 {
		book.TotalCopies = 1
	}
	if book.AvailableCopies == 0 {
		book.AvailableCopies = book.TotalCopies
	}
	if err := validateBook(book); err != nil {
		return nil, err
	}
	id, err := s.books.InsertBook(ctx, book)
	if err != nil {
		return nil, err
	}
	book.ID = id
	return book, nil
}

// Update edits a book. A total-copies change rebases availableCopies so the
// number of copies presently checked out is preserved:
// available = max(0, newTotal - currentlyBorrowed). The row stays locked
// from read to write so a concurrent borrow cannot slip its decrement in
// between and have it overwritten.
func (s *BookService) Update(ctx context.Context, id int64, details *models.Book) (*models.Book, error) {
	var book *models.Book

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		book, err = s.books.BookByIDForUpdate(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundf("book not found with id: %d", id)
		}
		if err != nil {
			return err
		}

		book.Title = details.Title
		book.ISBN = details.ISBN
		book.Category = details.Category
		book.PublishingYear = details.PublishingYear
		book.Description = details.Description
		book.AuthorID = details.AuthorID

		if details.TotalCopies > 0 {
			borrowed := book.BorrowedCount()
			book.TotalCopies = details.TotalCopies
			book.AvailableCopies = max(0, details.TotalCopies-borrowed)
		}

		if err := validateBook(book); err != nil {
			return err
		}
		return s.books.UpdateBook(ctx, book)
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Delete refuses to remove a book while copies are still checked out.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	if _, err := s.getBook(ctx, id); err != nil {
		return err
	}
	borrows, err := s.loans.CountActiveByBook(ctx, id)
	if err != nil {
		return err
	}
	if borrows > 0 {
		return blockedDeletionf("cannot delete book with active borrows: return all copies first")
	}
	return s.books.DeleteBook(ctx, id)
}

func (s *BookService) IsAvailable(ctx context.Context, id int64) (bool, error) {
	book, err := s.books.BookByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return book.IsAvailable(), nil
}

func (s *BookService) getBook(ctx context.Context, id int64) (*models.Book, error) {
	book, err := s.books.BookByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("book not found with id: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

func validateBook(book *models.Book) error {
	if strings.TrimSpace(book.Title) == "" {
		return validationf("book title is required")
	}
	if len(book.Title) > 200 {
		return validationf("title must not exceed 200 characters")
	}
	if strings.TrimSpace(book.Category) == "" {
		return validationf("category is required")
	}
	if len(book.Category) > 50 {
		return validationf("category must not exceed 50 characters")
	}
	if book.PublishingYear < 0 || book.PublishingYear > time.Now().Year() {
		return validationf("publishing year must be valid")
	}
	if book.AuthorID == 0 {
		return validationf("author is required")
	}
	if len(book.ISBN) > 20 {
		return validationf("isbn must not exceed 20 characters")
	}
	if len(book.Description) > 1000 {
		return validationf("description must not exceed 1000 characters")
	}
	if book.TotalCopies <= 0 {
		return validationf("total copies must be greater than 0")
	}
	if book.AvailableCopies < 0 {
		return validationf("available copies cannot be negative")
	}
	if book.AvailableCopies > book.TotalCopies {
		return validationf("available copies cannot exceed total copies")
	}
	return nil
}
