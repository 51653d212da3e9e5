package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"library-api/models"
	"library-api/store"
)

func (s *Store) InsertBook(ctx context.Context, book *models.Book) (int64, error) {
	defer s.lock(ctx)()

	now := time.Now()
	book.ID = s.nextBookID
	book.CreatedAt = now
	book.UpdatedAt = now
	s.nextBookID++

	stored := *book
	stored.Author = nil
	s.books[stored.ID] = stored
	return stored.ID, nil
}

func (s *Store) UpdateBook(ctx context.Context, book *models.Book) error {
	defer s.lock(ctx)()

	if _, ok := s.books[book.ID]; !ok {
		return store.ErrNotFound
	}
	book.UpdatedAt = time.Now()
	stored := *book
	stored.Author = nil
	s.books[stored.ID] = stored
	return nil
}

func (s *Store) UpdateBookCopies(ctx context.Context, id int64, available, total int) error {
	defer s.lock(ctx)()

	book, ok := s.books[id]
	if !ok {
		return store.ErrNotFound
	}
	book.AvailableCopies = available
	book.TotalCopies = total
	book.UpdatedAt = time.Now()
	s.books[id] = book
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	defer s.lock(ctx)()

	if _, ok := s.books[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.books, id)
	return nil
}

func (s *Store) BookByID(ctx context.Context, id int64) (*models.Book, error) {
	defer s.lock(ctx)()
	return s.bookByID(id)
}

func (s *Store) BookByIDForUpdate(ctx context.Context, id int64) (*models.Book, error) {
	defer s.lock(ctx)()
	return s.bookByID(id)
}

func (s *Store) BookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	defer s.lock(ctx)()

	for id, b := range s.books {
		if b.ISBN != "" && b.ISBN == isbn {
			return s.bookByID(id)
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) Books(ctx context.Context, filter store.BookFilter) ([]models.Book, error) {
	defer s.lock(ctx)()

	books := []models.Book{}
	for _, b := range s.books {
		if !matchBook(b, filter) {
			continue
		}
		book := b
		s.attachAuthor(&book)
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	defer s.lock(ctx)()

	seen := map[string]bool{}
	categories := []string{}
	for _, b := range s.books {
		if !seen[b.Category] {
			seen[b.Category] = true
			categories = append(categories, b.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *Store) bookByID(id int64) (*models.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	s.attachAuthor(&b)
	return &b, nil
}

func (s *Store) attachAuthor(book *models.Book) {
	if a, ok := s.authors[book.AuthorID]; ok {
		author := a
		book.Author = &author
	}
}

func matchBook(b models.Book, f store.BookFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(b.Title), needle) &&
			!strings.Contains(strings.ToLower(b.ISBN), needle) {
			return false
		}
	}
	if f.Category != "" && !strings.EqualFold(b.Category, f.Category) {
		return false
	}
	if f.AuthorID != 0 && b.AuthorID != f.AuthorID {
		return false
	}
	if f.Available != nil {
		if *f.Available != (b.AvailableCopies > 0) {
			return false
		}
	}
	return true
}
