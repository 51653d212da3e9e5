package store

import (
	"context"
	"fmt"
	"log"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the PostgreSQL store. All SQL is built with goqu and executed through
// pgx; methods join an active transaction when one is carried in the context.
type DB struct {
	pool    *pgxpool.Pool
	dialect goqu.DialectWrapper
}

func NewPostgres(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Println("Connected to PostgreSQL")
	return &DB{pool: pool, dialect: goqu.Dialect("postgres")}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS authors (
	id          BIGSERIAL PRIMARY KEY,
	name        VARCHAR(100) NOT NULL UNIQUE,
	biography   VARCHAR(500) NOT NULL DEFAULT '',
	nationality VARCHAR(50) NOT NULL DEFAULT '',
	birth_year  INT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
	id               BIGSERIAL PRIMARY KEY,
	title            VARCHAR(200) NOT NULL,
	isbn             VARCHAR(20) UNIQUE,
	category         VARCHAR(50) NOT NULL,
	publishing_year  INT NOT NULL,
	description      VARCHAR(1000) NOT NULL DEFAULT '',
	author_id        BIGINT NOT NULL REFERENCES authors (id),
	total_copies     INT NOT NULL DEFAULT 1 CHECK (total_copies > 0),
	available_copies INT NOT NULL CHECK (available_copies >= 0 AND available_copies <= total_copies),
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
	id              BIGSERIAL PRIMARY KEY,
	name            VARCHAR(100) NOT NULL,
	email           VARCHAR(100) NOT NULL UNIQUE,
	phone           VARCHAR(20) NOT NULL DEFAULT '',
	address         VARCHAR(200) NOT NULL DEFAULT '',
	membership_date TIMESTAMPTZ NOT NULL,
	status          VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS borrowed_books (
	id          BIGSERIAL PRIMARY KEY,
	member_id   BIGINT NOT NULL REFERENCES members (id),
	book_id     BIGINT NOT NULL REFERENCES books (id),
	borrow_date DATE NOT NULL,
	due_date    DATE NOT NULL,
	return_date DATE,
	status      VARCHAR(20) NOT NULL DEFAULT 'BORROWED',
	notes       VARCHAR(500) NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_books_author ON books (author_id);
CREATE INDEX IF NOT EXISTS idx_books_category ON books (category);
CREATE INDEX IF NOT EXISTS idx_borrowed_books_member ON borrowed_books (member_id);
CREATE INDEX IF NOT EXISTS idx_borrowed_books_book ON borrowed_books (book_id);
CREATE INDEX IF NOT EXISTS idx_borrowed_books_status ON borrowed_books (status);
CREATE INDEX IF NOT EXISTS idx_borrowed_books_due ON borrowed_books (due_date);
`

// Migrate creates the schema when missing.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

type txKey struct{}

// RunInTx runs fn in a single transaction. Store methods invoked with the ctx
// given to fn execute on that transaction. Nested calls join the outer one.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (db *DB) q(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db.pool
}
