package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"library-api/models"
	"library-api/store"
)

// MaxActiveLoans is the hard cap on concurrently BORROWED loans per member.
const MaxActiveLoans = 5

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

type MemberService struct {
	members MemberStore
	loans   LoanStore
}

func NewMemberService(members MemberStore, loans LoanStore) *MemberService {
	return &MemberService{members: members, loans: loans}
}

func (s *MemberService) Get(ctx context.Context, id int64) (*models.Member, error) {
	return s.getMember(ctx, id)
}

func (s *MemberService) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	member, err := s.members.MemberByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("member not found with email: %s", email)
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *MemberService) List(ctx context.Context, filter store.MemberFilter) ([]models.Member, error) {
	return s.members.Members(ctx, filter)
}

func (s *MemberService) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	if member.MembershipDate.IsZero() {
		member.MembershipDate = time.Now()
	}
	if member.Status == "" {
		member.Status = models.MemberActive
	}
	if err := s.validate(ctx, member); err != nil {
		return nil, err
	}
	id, err := s.members.InsertMember(ctx, member)
	if err != nil {
		return nil, err
	}
	member.ID = id
	return member, nil
}

func (s *MemberService) Update(ctx context.Context, id int64, details *models.Member) (*models.Member, error) {
	member, err := s.getMember(ctx, id)
	if err != nil {
		return nil, err
	}

	member.Name = details.Name
	member.Email = details.Email
	member.Phone = details.Phone
	member.Address = details.Address
	if details.Status != "" {
		if !details.Status.Valid() {
			return nil, validationf("invalid membership status: %s", details.Status)
		}
		member.Status = details.Status
	}

	if err := s.validate(ctx, member); err != nil {
		return nil, err
	}
	if err := s.members.UpdateMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Delete refuses to remove a member while any of their loans is still
// outstanding.
func (s *MemberService) Delete(ctx context.Context, id int64) error {
	if _, err := s.getMember(ctx, id); err != nil {
		return err
	}
	active, err := s.loans.CountActiveByMember(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return blockedDeletionf("cannot delete member with active borrows: return all books first")
	}
	return s.members.DeleteMember(ctx, id)
}

// Suspend and Activate are direct status transitions with no side effects on
// existing loans.
func (s *MemberService) Suspend(ctx context.Context, id int64) (*models.Member, error) {
	return s.setStatus(ctx, id, models.MemberSuspended)
}

func (s *MemberService) Activate(ctx context.Context, id int64) (*models.Member, error) {
	return s.setStatus(ctx, id, models.MemberActive)
}

// CanBorrow reports borrowing eligibility: the member must exist, be ACTIVE,
// and hold fewer than MaxActiveLoans BORROWED loans.
func (s *MemberService) CanBorrow(ctx context.Context, id int64) (bool, error) {
	member, err := s.members.MemberByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !member.IsActive() {
		return false, nil
	}
	active, err := s.loans.CountActiveByMember(ctx, id)
	if err != nil {
		return false, err
	}
	return active < MaxActiveLoans, nil
}

func (s *MemberService) CountActiveBorrows(ctx context.Context, id int64) (int64, error) {
	return s.loans.CountActiveByMember(ctx, id)
}

func (s *MemberService) setStatus(ctx context.Context, id int64, status models.MembershipStatus) (*models.Member, error) {
	member, err := s.getMember(ctx, id)
	if err != nil {
		return nil, err
	}
	member.Status = status
	if err := s.members.UpdateMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *MemberService) getMember(ctx context.Context, id int64) (*models.Member, error) {
	member, err := s.members.MemberByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("member not found with id: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *MemberService) validate(ctx context.Context, member *models.Member) error {
	if strings.TrimSpace(member.Name) == "" {
		return validationf("member name is required")
	}
	if len(member.Name) > 100 {
		return validationf("name must not exceed 100 characters")
	}
	if strings.TrimSpace(member.Email) == "" {
		return validationf("email is required")
	}
	if len(member.Email) > 100 {
		return validationf("email must not exceed 100 characters")
	}
	if !emailPattern.MatchString(member.Email) {
		return validationf("email format is invalid")
	}
	existing, err := s.members.MemberByEmail(ctx, member.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if existing != nil && existing.ID != member.ID {
		return validationf("email already exists")
	}
	if len(member.Phone) > 20 {
		return validationf("phone must not exceed 20 characters")
	}
	if len(member.Address) > 200 {
		return validationf("address must not exceed 200 characters")
	}
	return nil
}
