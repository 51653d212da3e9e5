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

var loanColumns = []any{
	goqu.I("bb.id"), goqu.I("bb.member_id"), goqu.I("bb.book_id"),
	goqu.I("m.name"), goqu.I("b.title"),
	goqu.I("bb.borrow_date"), goqu.I("bb.due_date"), goqu.I("bb.return_date"),
	goqu.I("bb.status"), goqu.I("bb.notes"), goqu.I("bb.created_at"), goqu.I("bb.updated_at"),
}

func (db *DB) loanQuery() *goqu.SelectDataset {
	return db.dialect.
		From(goqu.T("borrowed_books").As("bb")).
		Join(goqu.T("members").As("m"), goqu.On(goqu.I("bb.member_id").Eq(goqu.I("m.id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("bb.book_id").Eq(goqu.I("b.id")))).
		Select(loanColumns...)
}

func (db *DB) InsertLoan(ctx context.Context, loan *models.Loan) (int64, error) {
	now := time.Now()
	loan.CreatedAt = now
	loan.UpdatedAt = now

	sql, _, err := db.dialect.
		Insert("borrowed_books").
		Rows(goqu.Record{
			"member_id":   loan.MemberID,
			"book_id":     loan.BookID,
			"borrow_date": loan.BorrowDate.Time,
			"due_date":    loan.DueDate.Time,
			"return_date": nullableDate(loan.ReturnDate),
			"status":      string(loan.Status),
			"notes":       loan.Notes,
			"created_at":  loan.CreatedAt,
			"updated_at":  loan.UpdatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert loan: %w", err)
	}

	var id int64
	if err := db.q(ctx).QueryRow(ctx, sql).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert loan: %w", err)
	}
	return id, nil
}

func (db *DB) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	loan.UpdatedAt = time.Now()

	sql, _, err := db.dialect.
		Update("borrowed_books").
		Set(goqu.Record{
			"borrow_date": loan.BorrowDate.Time,
			"due_date":    loan.DueDate.Time,
			"return_date": nullableDate(loan.ReturnDate),
			"status":      string(loan.Status),
			"notes":       loan.Notes,
			"updated_at":  loan.UpdatedAt,
		}).
		Where(goqu.C("id").Eq(loan.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update loan: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "update loan")
}

func (db *DB) DeleteLoan(ctx context.Context, id int64) error {
	sql, _, err := db.dialect.Delete("borrowed_books").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete loan: %w", err)
	}
	return db.execExpectingRow(ctx, sql, "delete loan")
}

func (db *DB) LoanByID(ctx context.Context, id int64) (*models.Loan, error) {
	sql, _, err := db.loanQuery().Where(goqu.I("bb.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select loan: %w", err)
	}
	return scanLoan(db.q(ctx).QueryRow(ctx, sql))
}

func (db *DB) Loans(ctx context.Context, filter LoanFilter) ([]models.Loan, error) {
	query := db.loanQuery().Order(goqu.I("bb.borrow_date").Desc(), goqu.I("bb.id").Desc())

	if filter.MemberID != 0 {
		query = query.Where(goqu.I("bb.member_id").Eq(filter.MemberID))
	}
	if filter.BookID != 0 {
		query = query.Where(goqu.I("bb.book_id").Eq(filter.BookID))
	}
	if filter.Status != "" {
		query = query.Where(goqu.I("bb.status").Eq(string(filter.Status)))
	}
	if !filter.From.IsZero() {
		query = query.Where(goqu.I("bb.borrow_date").Gte(filter.From.Time))
	}
	if !filter.To.IsZero() {
		query = query.Where(goqu.I("bb.borrow_date").Lte(filter.To.Time))
	}

	return db.manyLoans(ctx, query)
}

// OverdueLoans lists BORROWED loans whose due date is strictly before today,
// the sweep's candidate set.
func (db *DB) OverdueLoans(ctx context.Context, today models.Date) ([]models.Loan, error) {
	return db.manyLoans(ctx, db.loanQuery().
		Where(goqu.I("bb.status").Eq(string(models.LoanBorrowed))).
		Where(goqu.I("bb.due_date").Lt(today.Time)).
		Order(goqu.I("bb.due_date").Asc()))
}

func (db *DB) LoansDueOn(ctx context.Context, date models.Date) ([]models.Loan, error) {
	return db.manyLoans(ctx, db.loanQuery().
		Where(goqu.I("bb.status").Eq(string(models.LoanBorrowed))).
		Where(goqu.I("bb.due_date").Eq(date.Time)))
}

// ActiveLoansByMember lists the member's loans that are not yet RETURNED.
func (db *DB) ActiveLoansByMember(ctx context.Context, memberID int64) ([]models.Loan, error) {
	return db.manyLoans(ctx, db.loanQuery().
		Where(goqu.I("bb.member_id").Eq(memberID)).
		Where(goqu.I("bb.status").Neq(string(models.LoanReturned))).
		Order(goqu.I("bb.borrow_date").Desc()))
}

func (db *DB) CountActiveByMember(ctx context.Context, memberID int64) (int64, error) {
	return db.countLoans(ctx,
		goqu.C("member_id").Eq(memberID),
		goqu.C("status").Eq(string(models.LoanBorrowed)))
}

func (db *DB) CountActiveByBook(ctx context.Context, bookID int64) (int64, error) {
	return db.countLoans(ctx,
		goqu.C("book_id").Eq(bookID),
		goqu.C("status").Eq(string(models.LoanBorrowed)))
}

func (db *DB) CountBorrowed(ctx context.Context) (int64, error) {
	return db.countLoans(ctx, goqu.C("status").Eq(string(models.LoanBorrowed)))
}

func (db *DB) CountOverdue(ctx context.Context) (int64, error) {
	return db.countLoans(ctx, goqu.C("status").Eq(string(models.LoanOverdue)))
}

func (db *DB) countLoans(ctx context.Context, conds ...goqu.Expression) (int64, error) {
	sql, _, err := db.dialect.
		From("borrowed_books").
		Select(goqu.COUNT("*")).
		Where(conds...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count loans: %w", err)
	}

	var count int64
	if err := db.q(ctx).QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("count loans: %w", err)
	}
	return count, nil
}

func (db *DB) manyLoans(ctx context.Context, query *goqu.SelectDataset) ([]models.Loan, error) {
	sql, _, err := query.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select loans: %w", err)
	}

	rows, err := db.q(ctx).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("select loans: %w", err)
	}
	defer rows.Close()

	loans := []models.Loan{}
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

func scanLoan(row pgx.Row) (*models.Loan, error) {
	var loan models.Loan
	var returnDate models.Date
	err := row.Scan(&loan.ID, &loan.MemberID, &loan.BookID,
		&loan.MemberName, &loan.BookTitle,
		&loan.BorrowDate, &loan.DueDate, &returnDate,
		&loan.Status, &loan.Notes, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan loan: %w", err)
	}
	if !returnDate.IsZero() {
		loan.ReturnDate = &returnDate
	}
	return &loan, nil
}

func nullableDate(d *models.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.Time
}
