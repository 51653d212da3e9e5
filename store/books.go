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

var bookColumns = []any{
	goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.isbn"), goqu.I("b.category"),
	goqu.I("b.publishing_year"), goqu.I("b.description"), goqu.I("b.author_id"),
	goqu.I("b.total_copies"), goqu.I("b.available_copies"),
	goqu.I("b.created_at"), goqu.I("b.updated_at"),
	goqu.I("a.name"), goqu.I("a.biography"), goqu.I("a.nationality"),
	goqu.I("a.birth_year"), goqu.I("a.created_at"), goqu.I("a.updated_at"),
}

func (db *DB) bookQuery() *goqu.SelectDataset {
	return db.dialect.
		From(goqu.T("books").As("b")).
		Join(goqu.T("authors").As("a"), goqu.On(goqu.I("b.author_id").Eq(goqu.I("a.id")))).
		Select(bookColumns...)
}

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (int64, error) {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	sql, _, err := db.dialect.
		Insert("books").
		Rows(goqu.Record{
			"title":            book.Title,
			"isbn":             nullable(book.ISBN),
			"category":         book.Category,
			"publishing_year":  book.PublishingYear,
			"description":      book.Description,
			"author_id":        book.AuthorID,
			"total_copies":     book.TotalCopies,
			"available_copies": book.AvailableCopies,
			"created_at":       book.CreatedAt,
			"updated_at":       book.UpdatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert book: %w", err)
	}

	var id int64
	if err := db.q(ctx).QueryRow(ctx, sql).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

func (db *DB) UpdateBook(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now()

	sql, _, err := db.dialect.
		Update("books").
		Set(goqu.Record{
			"title":            book.Title,
			"isbn":             nullable(book.ISBN),
			"category":         book.Category,
			"publishing_year":  book.PublishingYear,
			"description":      book.Description,
			"author_id":        book.AuthorID,
			"total_copies":     book.TotalCopies,
			"available_copies": book.AvailableCopies,
			"updated_at":       book.UpdatedAt,
		}).
		Where(goqu.C("id").Eq(book.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update book: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "update book")
}

// UpdateBookCopies writes just the copy counters, used by the loan ledger
// inside its transactions.
func (db *DB) UpdateBookCopies(ctx context.Context, id int64, available, total int) error {
	sql, _, err := db.dialect.
		Update("books").
		Set(goqu.Record{
			"available_copies": available,
			"total_copies":     total,
			"updated_at":       time.Now(),
		}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update book copies: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "update book copies")
}

func (db *DB) DeleteBook(ctx context.Context, id int64) error {
	sql, _, err := db.dialect.Delete("books").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete book: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "delete book")
}

func (db *DB) BookByID(ctx context.Context, id int64) (*models.Book, error) {
	return db.oneBook(ctx, db.bookQuery().Where(goqu.I("b.id").Eq(id)))
}

// BookByIDForUpdate locks the book row until the surrounding transaction
// ends. The author join is skipped so the lock covers only the books row.
func (db *DB) BookByIDForUpdate(ctx context.Context, id int64) (*models.Book, error) {
	sql, _, err := db.dialect.
		From("books").
		Select("id", "title", "isbn", "category", "publishing_year", "description",
			"author_id", "total_copies", "available_copies", "created_at", "updated_at").
		Where(goqu.C("id").Eq(id)).
		ForUpdate(goqu.Wait).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select book for update: %w", err)
	}

	row := db.q(ctx).QueryRow(ctx, sql)
	var book models.Book
	var isbn *string
	if err := row.Scan(&book.ID, &book.Title, &isbn, &book.Category, &book.PublishingYear,
		&book.Description, &book.AuthorID, &book.TotalCopies, &book.AvailableCopies,
		&book.CreatedAt, &book.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select book for update: %w", err)
	}
	if isbn != nil {
		book.ISBN = *isbn
	}
	return &book, nil
}

func (db *DB) BookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	return db.oneBook(ctx, db.bookQuery().Where(goqu.I("b.isbn").Eq(isbn)))
}

func (db *DB) Books(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	query := db.bookQuery().Order(goqu.I("b.title").Asc())

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(goqu.Or(
			goqu.I("b.title").ILike(pattern),
			goqu.I("b.isbn").ILike(pattern),
		))
	}
	if filter.Category != "" {
		query = query.Where(goqu.L("LOWER(b.category)").Eq(goqu.L("LOWER(?)", filter.Category)))
	}
	if filter.AuthorID != 0 {
		query = query.Where(goqu.I("b.author_id").Eq(filter.AuthorID))
	}
	if filter.Available != nil {
		if *filter.Available {
			query = query.Where(goqu.I("b.available_copies").Gt(0))
		} else {
			query = query.Where(goqu.I("b.available_copies").Eq(0))
		}
	}

	sql, _, err := query.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select books: %w", err)
	}

	rows, err := db.q(ctx).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

func (db *DB) Categories(ctx context.Context) ([]string, error) {
	sql, _, err := db.dialect.
		From("books").
		SelectDistinct("category").
		Order(goqu.C("category").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select categories: %w", err)
	}

	rows, err := db.q(ctx).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (db *DB) oneBook(ctx context.Context, query *goqu.SelectDataset) (*models.Book, error) {
	sql, _, err := query.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select book: %w", err)
	}
	book, err := scanBook(db.q(ctx).QueryRow(ctx, sql))
	if err != nil {
		return nil, err
	}
	return book, nil
}

func scanBook(row pgx.Row) (*models.Book, error) {
	var book models.Book
	var author models.Author
	var isbn *string
	err := row.Scan(&book.ID, &book.Title, &isbn, &book.Category, &book.PublishingYear,
		&book.Description, &book.AuthorID, &book.TotalCopies, &book.AvailableCopies,
		&book.CreatedAt, &book.UpdatedAt,
		&author.Name, &author.Biography, &author.Nationality, &author.BirthYear,
		&author.CreatedAt, &author.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}
	if isbn != nil {
		book.ISBN = *isbn
	}
	author.ID = book.AuthorID
	book.Author = &author
	return &book, nil
}

// nullable maps "" to NULL so optional unique columns (isbn) do not collide.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (db *DB) execExpectingRow(ctx context.Context, sql, op string) error {
	tag, err := db.q(ctx).Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
