package models

import "time"

type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	ISBN            string    `json:"isbn,omitempty"`
	Category        string    `json:"category"`
	PublishingYear  int       `json:"publishingYear"`
	Description     string    `json:"description,omitempty"`
	AuthorID        int64     `json:"authorId"`
	Author          *Author   `json:"author,omitempty"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsAvailable reports whether at least one copy can be borrowed.
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// BorrowedCount is the number of copies currently checked out.
func (b *Book) BorrowedCount() int {
	return b.TotalCopies - b.AvailableCopies
}
