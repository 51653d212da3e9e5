package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/models"
	"library-api/service"
)

func TestCreateAuthor_RejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authors := service.NewAuthorService(f.st)

	_, err := authors.Create(ctx, &models.Author{Name: "George Orwell", Nationality: "British"})
	require.NoError(t, err)

	_, err = authors.Create(ctx, &models.Author{Name: "George Orwell"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestDeleteAuthor_BlockedWhileBooksExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authors := service.NewAuthorService(f.st)
	book := f.addBook(t, "The Trial", 1)

	err := authors.Delete(ctx, book.AuthorID)
	assert.Equal(t, service.KindBlockedDeletion, service.KindOf(err))

	require.NoError(t, f.books.Delete(ctx, book.ID))
	require.NoError(t, authors.Delete(ctx, book.AuthorID))
}

func TestAuthorLookupByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authors := service.NewAuthorService(f.st)

	created, err := authors.Create(ctx, &models.Author{Name: "Jane Austen", Nationality: "British", BirthYear: 1775})
	require.NoError(t, err)

	found, err := authors.GetByName(ctx, "Jane Austen")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = authors.GetByName(ctx, "Nobody")
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}
