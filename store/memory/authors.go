package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"library-api/models"
	"library-api/store"
)

func (s *Store) InsertAuthor(ctx context.Context, author *models.Author) (int64, error) {
	defer s.lock(ctx)()

	now := time.Now()
	author.ID = s.nextAuthorID
	author.CreatedAt = now
	author.UpdatedAt = now
	s.nextAuthorID++

	s.authors[author.ID] = *author
	return author.ID, nil
}

func (s *Store) UpdateAuthor(ctx context.Context, author *models.Author) error {
	defer s.lock(ctx)()

	if _, ok := s.authors[author.ID]; !ok {
		return store.ErrNotFound
	}
	author.UpdatedAt = time.Now()
	s.authors[author.ID] = *author
	return nil
}

func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	defer s.lock(ctx)()

	if _, ok := s.authors[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.authors, id)
	return nil
}

func (s *Store) AuthorByID(ctx context.Context, id int64) (*models.Author, error) {
	defer s.lock(ctx)()

	a, ok := s.authors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) AuthorByName(ctx context.Context, name string) (*models.Author, error) {
	defer s.lock(ctx)()

	for _, a := range s.authors {
		if a.Name == name {
			author := a
			return &author, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) Authors(ctx context.Context, filter store.AuthorFilter) ([]models.Author, error) {
	defer s.lock(ctx)()

	authors := []models.Author{}
	for _, a := range s.authors {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Nationality != "" && !strings.EqualFold(a.Nationality, filter.Nationality) {
			continue
		}
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].Name < authors[j].Name })
	return authors, nil
}

func (s *Store) CountBooksByAuthor(ctx context.Context, authorID int64) (int64, error) {
	defer s.lock(ctx)()

	var count int64
	for _, b := range s.books {
		if b.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}
