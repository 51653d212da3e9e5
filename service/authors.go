package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"library-api/models"
	"library-api/store"
)

type AuthorService struct {
	authors AuthorStore
}

func NewAuthorService(authors AuthorStore) *AuthorService {
	return &AuthorService{authors: authors}
}

func (s *AuthorService) Get(ctx context.Context, id int64) (*models.Author, error) {
	return s.getAuthor(ctx, id)
}

func (s *AuthorService) GetByName(ctx context.Context, name string) (*models.Author, error) {
	author, err := s.authors.AuthorByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("author not found with name: %s", name)
	}
	if err != nil {
		return nil, err
	}
	return author, nil
}

func (s *AuthorService) List(ctx context.Context, filter store.AuthorFilter) ([]models.Author, error) {
	return s.authors.Authors(ctx, filter)
}

func (s *AuthorService) Create(ctx context.Context, author *models.Author) (*models.Author, error) {
	if err := s.validate(ctx, author); err != nil {
		return nil, err
	}
	id, err := s.authors.InsertAuthor(ctx, author)
	if err != nil {
		return nil, err
	}
	author.ID = id
	return author, nil
}

func (s *AuthorService) Update(ctx context.Context, id int64, details *models.Author) (*models.Author, error) {
	author, err := s.getAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	author.Name = details.Name
	author.Biography = details.Biography
	author.Nationality = details.Nationality
	author.BirthYear = details.BirthYear

	if err := s.validate(ctx, author); err != nil {
		return nil, err
	}
	if err := s.authors.UpdateAuthor(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

// Delete refuses to remove an author while books still reference them.
func (s *AuthorService) Delete(ctx context.Context, id int64) error {
	if _, err := s.getAuthor(ctx, id); err != nil {
		return err
	}
	books, err := s.authors.CountBooksByAuthor(ctx, id)
	if err != nil {
		return err
	}
	if books > 0 {
		return blockedDeletionf("cannot delete author with existing books: delete or reassign books first")
	}
	return s.authors.DeleteAuthor(ctx, id)
}

func (s *AuthorService) CountBooks(ctx context.Context, id int64) (int64, error) {
	return s.authors.CountBooksByAuthor(ctx, id)
}

func (s *AuthorService) getAuthor(ctx context.Context, id int64) (*models.Author, error) {
	author, err := s.authors.AuthorByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("author not found with id: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return author, nil
}

func (s *AuthorService) validate(ctx context.Context, author *models.Author) error {
	if strings.TrimSpace(author.Name) == "" {
		return validationf("author name is required")
	}
	if len(author.Name) > 100 {
		return validationf("author name must not exceed 100 characters")
	}
	if len(author.Biography) > 500 {
		return validationf("biography must not exceed 500 characters")
	}
	if len(author.Nationality) > 50 {
		return validationf("nationality must not exceed 50 characters")
	}
	if author.BirthYear < 0 || author.BirthYear > time.Now().Year() {
		return validationf("birth year must be valid")
	}
	existing, err := s.authors.AuthorByName(ctx, author.Name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if existing != nil && existing.ID != author.ID {
		return validationf("author name already exists")
	}
	return nil
}
