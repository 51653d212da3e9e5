package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/models"
	"library-api/service"
	"library-api/store"
)

func TestCreateMember_Defaults(t *testing.T) {
	f := newFixture(t)

	member, err := f.members.Create(context.Background(), &models.Member{
		Name:  "Anna Kim",
		Email: "anna@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MemberActive, member.Status)
	assert.False(t, member.MembershipDate.IsZero())
}

func TestCreateMember_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.members.Create(ctx, &models.Member{Name: "", Email: "a@example.com"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = f.members.Create(ctx, &models.Member{Name: "Anna", Email: "not-an-email"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = f.members.Create(ctx, &models.Member{Name: "Anna", Email: "anna@example.com"})
	require.NoError(t, err)
	_, err = f.members.Create(ctx, &models.Member{Name: "Other Anna", Email: "anna@example.com"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestSuspendAndActivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "anna", models.MemberActive)
	book := f.addBook(t, "The Trial", 1)

	suspended, err := f.members.Suspend(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MemberSuspended, suspended.Status)

	_, err = f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	assert.Equal(t, service.KindIneligible, service.KindOf(err))

	activated, err := f.members.Activate(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MemberActive, activated.Status)

	_, err = f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
}

func TestDeleteMember_BlockedWhileLoansOutstanding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "anna", models.MemberActive)
	book := f.addBook(t, "The Trial", 1)

	loan, err := f.loans.Borrow(ctx, service.BorrowRequest{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	err = f.members.Delete(ctx, member.ID)
	assert.Equal(t, service.KindBlockedDeletion, service.KindOf(err))

	_, err = f.loans.Return(ctx, loan.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.members.Delete(ctx, member.ID))
}

func TestCanBorrow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// unknown member is simply not eligible
	eligible, err := f.members.CanBorrow(ctx, 42)
	require.NoError(t, err)
	assert.False(t, eligible)

	member := f.addMember(t, "anna", models.MemberActive)
	eligible, err = f.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, eligible)

	_, err = f.members.Suspend(ctx, member.ID)
	require.NoError(t, err)
	eligible, err = f.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestMemberLookupAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMember(t, "anna", models.MemberActive)
	f.addMember(t, "ben", models.MemberSuspended)

	member, err := f.members.GetByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, "anna", member.Name)

	_, err = f.members.GetByEmail(ctx, "nobody@example.com")
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	suspended, err := f.members.List(ctx, store.MemberFilter{Status: models.MemberSuspended})
	require.NoError(t, err)
	require.Len(t, suspended, 1)
	assert.Equal(t, "ben", suspended[0].Name)
}
