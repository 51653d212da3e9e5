package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"library-api/models"
	"library-api/store"
)

func (s *Store) InsertMember(ctx context.Context, member *models.Member) (int64, error) {
	defer s.lock(ctx)()

	now := time.Now()
	member.ID = s.nextMemberID
	member.CreatedAt = now
	member.UpdatedAt = now
	s.nextMemberID++

	s.members[member.ID] = *member
	return member.ID, nil
}

func (s *Store) UpdateMember(ctx context.Context, member *models.Member) error {
	defer s.lock(ctx)()

	if _, ok := s.members[member.ID]; !ok {
		return store.ErrNotFound
	}
	member.UpdatedAt = time.Now()
	s.members[member.ID] = *member
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id int64) error {
	defer s.lock(ctx)()

	if _, ok := s.members[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *Store) MemberByID(ctx context.Context, id int64) (*models.Member, error) {
	defer s.lock(ctx)()

	m, ok := s.members[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) MemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	defer s.lock(ctx)()

	for _, m := range s.members {
		if m.Email == email {
			member := m
			return &member, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) Members(ctx context.Context, filter store.MemberFilter) ([]models.Member, error) {
	defer s.lock(ctx)()

	members := []models.Member{}
	for _, m := range s.members {
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(m.Name), needle) &&
				!strings.Contains(strings.ToLower(m.Email), needle) {
				continue
			}
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}
