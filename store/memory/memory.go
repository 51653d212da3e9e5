// Package memory is an in-memory store used when no database is configured
// and as the transactional fake in tests. A single mutex serializes all
// operations; RunInTx snapshots state so a failed transaction rolls back.
package memory

import (
	"context"
	"sync"

	"library-api/models"
)

type Store struct {
	mu sync.Mutex

	authors map[int64]models.Author
	books   map[int64]models.Book
	members map[int64]models.Member
	loans   map[int64]models.Loan

	nextAuthorID int64
	nextBookID   int64
	nextMemberID int64
	nextLoanID   int64
}

func NewStore() *Store {
	return &Store{
		authors:      map[int64]models.Author{},
		books:        map[int64]models.Book{},
		members:      map[int64]models.Member{},
		loans:        map[int64]models.Loan{},
		nextAuthorID: 1,
		nextBookID:   1,
		nextMemberID: 1,
		nextLoanID:   1,
	}
}

type txKey struct{}

// RunInTx holds the store lock for the whole of fn and restores the
// pre-transaction state when fn fails, mirroring a database rollback.
// Store methods recognize the transaction through the ctx passed to fn.
// Nested calls join the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// lock is a no-op inside a transaction, which already holds the mutex.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type state struct {
	authors map[int64]models.Author
	books   map[int64]models.Book
	members map[int64]models.Member
	loans   map[int64]models.Loan

	nextAuthorID, nextBookID, nextMemberID, nextLoanID int64
}

func (s *Store) snapshot() state {
	return state{
		authors:      copyMap(s.authors),
		books:        copyMap(s.books),
		members:      copyMap(s.members),
		loans:        copyMap(s.loans),
		nextAuthorID: s.nextAuthorID,
		nextBookID:   s.nextBookID,
		nextMemberID: s.nextMemberID,
		nextLoanID:   s.nextLoanID,
	}
}

func (s *Store) restore(st state) {
	s.authors = st.authors
	s.books = st.books
	s.members = st.members
	s.loans = st.loans
	s.nextAuthorID = st.nextAuthorID
	s.nextBookID = st.nextBookID
	s.nextMemberID = st.nextMemberID
	s.nextLoanID = st.nextLoanID
}

func copyMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneLoan(l models.Loan) models.Loan {
	if l.ReturnDate != nil {
		rd := *l.ReturnDate
		l.ReturnDate = &rd
	}
	return l
}
