package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"library-api/models"
)

var memberColumns = []any{
	"id", "name", "email", "phone", "address", "membership_date", "status",
	"created_at", "updated_at",
}

func (db *DB) InsertMember(ctx context.Context, member *models.Member) (int64, error) {
	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	sql, _, err := db.dialect.
		Insert("members").
		Rows(goqu.Record{
			"name":            member.Name,
			"email":           member.Email,
			"phone":           member.Phone,
			"address":         member.Address,
			"membership_date": member.MembershipDate,
			"status":          string(member.Status),
			"created_at":      member.CreatedAt,
			"updated_at":      member.UpdatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert member: %w", err)
	}

	var id int64
	if err := db.q(ctx).QueryRow(ctx, sql).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert member: %w", err)
	}
	return id, nil
}

func (db *DB) UpdateMember(ctx context.Context, member *models.Member) error {
	member.UpdatedAt = time.Now()

	sql, _, err := db.dialect.
		Update("members").
		Set(goqu.Record{
			"name":       member.Name,
			"email":      member.Email,
			"phone":      member.Phone,
			"address":    member.Address,
			"status":     string(member.Status),
			"updated_at": member.UpdatedAt,
		}).
		Where(goqu.C("id").Eq(member.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update member: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "update member")
}

func (db *DB) DeleteMember(ctx context.Context, id int64) error {
	sql, _, err := db.dialect.Delete("members").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete member: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "delete member")
}

func (db *DB) MemberByID(ctx context.Context, id int64) (*models.Member, error) {
	return db.oneMember(ctx, goqu.C("id").Eq(id))
}

func (db *DB) MemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return db.oneMember(ctx, goqu.C("email").Eq(email))
}

func (db *DB) Members(ctx context.Context, filter MemberFilter) ([]models.Member, error) {
	query := db.dialect.From("members").Select(memberColumns...).Order(goqu.C("name").Asc())

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("email").ILike(pattern),
		))
	}
	if filter.Status != "" {
		query = query.Where(goqu.C("status").Eq(string(filter.Status)))
	}

	sql, _, err := query.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select members: %w", err)
	}

	rows, err := db.q(ctx).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address,
			&m.MembershipDate, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (db *DB) oneMember(ctx context.Context, cond goqu.Expression) (*models.Member, error) {
	sql, _, err := db.dialect.From("members").Select(memberColumns...).Where(cond).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select member: %w", err)
	}

	var m models.Member
	err = db.q(ctx).QueryRow(ctx, sql).Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address,
		&m.MembershipDate, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select member: %w", err)
	}
	return &m, nil
}
