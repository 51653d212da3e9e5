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

var authorColumns = []any{
	"id", "name", "biography", "nationality", "birth_year", "created_at", "updated_at",
}

func (db *DB) InsertAuthor(ctx context.Context, author *models.Author) (int64, error) {
	now := time.Now()
	author.CreatedAt = now
	author.UpdatedAt = now

	sql, _, err := db.dialect.
		Insert("authors").
		Rows(goqu.Record{
			"name":        author.Name,
			"biography":   author.Biography,
			"nationality": author.Nationality,
			"birth_year":  author.BirthYear,
			"created_at":  author.CreatedAt,
			"updated_at":  author.UpdatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert author: %w", err)
	}

	var id int64
	if err := db.q(ctx).QueryRow(ctx, sql).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert author: %w", err)
	}
	return id, nil
}

func (db *DB) UpdateAuthor(ctx context.Context, author *models.Author) error {
	author.UpdatedAt = time.Now()

	sql, _, err := db.dialect.
		Update("authors").
		Set(goqu.Record{
			"name":        author.Name,
			"biography":   author.Biography,
			"nationality": author.Nationality,
			"birth_year":  author.BirthYear,
			"updated_at":  author.UpdatedAt,
		}).
		Where(goqu.C("id").Eq(author.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update author: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "update author")
}

func (db *DB) DeleteAuthor(ctx context.Context, id int64) error {
	sql, _, err := db.dialect.Delete("authors").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete author: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "delete author")
}

func (db *DB) AuthorByID(ctx context.Context, id int64) (*models.Author, error) {
	return db.oneAuthor(ctx, goqu.C("id").Eq(id))
}

func (db *DB) AuthorByName(ctx context.Context, name string) (*models.Author, error) {
	return db.oneAuthor(ctx, goqu.C("name").Eq(name))
}

func (db *DB) Authors(ctx context.Context, filter AuthorFilter) ([]models.Author, error) {
	query := db.dialect.From("authors").Select(authorColumns...).Order(goqu.C("name").Asc())

	if filter.Search != "" {
		query = query.Where(goqu.C("name").ILike("%" + filter.Search + "%"))
	}
	if filter.Nationality != "" {
		query = query.Where(goqu.L("LOWER(nationality)").Eq(goqu.L("LOWER(?)", filter.Nationality)))
	}

	sql, _, err := query.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select authors: %w", err)
	}

	rows, err := db.q(ctx).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("select authors: %w", err)
	}
	defer rows.Close()

	authors := []models.Author{}
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Biography, &a.Nationality, &a.BirthYear,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (db *DB) CountBooksByAuthor(ctx context.Context, authorID int64) (int64, error) {
	sql, _, err := db.dialect.
		From("books").
		Select(goqu.COUNT("*")).
		Where(goqu.C("author_id").Eq(authorID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count books by author: %w", err)
	}

	var count int64
	if err := db.q(ctx).QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("count books by author: %w", err)
	}
	return count, nil
}

func (db *DB) oneAuthor(ctx context.Context, cond goqu.Expression) (*models.Author, error) {
	sql, _, err := db.dialect.From("authors").Select(authorColumns...).Where(cond).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select author: %w", err)
	}

	var a models.Author
	err = db.q(ctx).QueryRow(ctx, sql).Scan(&a.ID, &a.Name, &a.Biography, &a.Nationality,
		&a.BirthYear, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select author: %w", err)
	}
	return &a, nil
}
