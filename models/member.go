package models

import "time"

type MembershipStatus string

const (
	MemberActive    MembershipStatus = "ACTIVE"
	MemberSuspended MembershipStatus = "SUSPENDED"
	MemberExpired   MembershipStatus = "EXPIRED"
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case MemberActive, MemberSuspended, MemberExpired:
		return true
	}
	return false
}

type Member struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone,omitempty"`
	Address        string           `json:"address,omitempty"`
	MembershipDate time.Time        `json:"membershipDate"`
	Status         MembershipStatus `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// IsActive reports whether the membership allows borrowing at all.
func (m *Member) IsActive() bool {
	return m.Status == MemberActive
}
