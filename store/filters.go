package store

import "library-api/models"

// BookFilter narrows book list queries. Zero values mean "no constraint".
type BookFilter struct {
	Search    string // matches title or ISBN, case-insensitive
	Category  string
	AuthorID  int64
	Available *bool // true: availableCopies > 0, false: availableCopies = 0
}

type AuthorFilter struct {
	Search      string // matches name, case-insensitive
	Nationality string
}

type MemberFilter struct {
	Search string // matches name or email, case-insensitive
	Status models.MembershipStatus
}

type LoanFilter struct {
	MemberID int64
	BookID   int64
	Status   models.LoanStatus
	From     models.Date // borrow date range, inclusive
	To       models.Date
}
