package models

import "time"

type Author struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Biography   string    `json:"biography,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	BirthYear   int       `json:"birthYear,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
