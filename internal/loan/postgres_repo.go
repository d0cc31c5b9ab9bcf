package loan

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"livraria/internal/book"
	"livraria/internal/paging"
)

const pgUniqueViolation = "23505"

const loanColumns = `
	l.id, l.customer, l.loan_date, l.returned,
	b.id, b.title, b.author, b.isbn, b.created_at, b.updated_at`

// PostgresRepo is the pgx-backed Repository implementation. Loans are always
// read with their book row joined in.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ExistsActiveByBook(ctx context.Context, bookID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM loans WHERE book_id = $1 AND returned IS NOT TRUE)",
		bookID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists active loan: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (*Loan, error) {
	query := `
	SELECT` + loanColumns + `
	FROM loans l
	JOIN books b ON b.id = l.book_id
	WHERE l.id = $1`

	l, err := scanLoan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return l, nil
}

func (r *PostgresRepo) Save(ctx context.Context, l *Loan) (*Loan, error) {
	saved := *l
	var err error
	if l.ID == 0 {
		const query = `
		INSERT INTO loans (book_id, customer, loan_date, returned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id`
		err = r.db.QueryRow(ctx, query, l.Book.ID, l.Customer, l.LoanDate, l.Returned).Scan(&saved.ID)
	} else {
		// Book reference and loan date are fixed at creation and never
		// rewritten here.
		const query = `
		UPDATE loans
		SET customer = $1, returned = $2, updated_at = now()
		WHERE id = $3
		RETURNING id`
		err = r.db.QueryRow(ctx, query, l.Customer, l.Returned, l.ID).Scan(&saved.ID)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// The partial unique index on active loans serializes
			// concurrent creations that both passed the pre-check.
			return nil, ErrBookAlreadyLoaned
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save loan: %w", err)
	}
	return &saved, nil
}

func (r *PostgresRepo) FindPage(ctx context.Context, f Filter, req paging.Request) (paging.Page[Loan], error) {
	return r.findPage(ctx, filterExpressions(f), req)
}

func (r *PostgresRepo) FindPageByBook(ctx context.Context, bookID int64, req paging.Request) (paging.Page[Loan], error) {
	return r.findPage(ctx, []exp.Expression{goqu.I("l.book_id").Eq(bookID)}, req)
}

func (r *PostgresRepo) findPage(ctx context.Context, where []exp.Expression, req paging.Request) (paging.Page[Loan], error) {
	var none paging.Page[Loan]

	base := func() *goqu.SelectDataset {
		return goqu.Dialect("postgres").
			From(goqu.T("loans").As("l")).
			Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
			Where(where...)
	}

	countSQL, countArgs, err := base().
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return none, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return none, fmt.Errorf("count loans: %w", err)
	}

	pageSQL, pageArgs, err := base().
		Select(
			goqu.I("l.id"), goqu.I("l.customer"), goqu.I("l.loan_date"), goqu.I("l.returned"),
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.isbn"),
			goqu.I("b.created_at"), goqu.I("b.updated_at"),
		).
		Order(goqu.I("l.loan_date").Desc(), goqu.I("l.id").Desc()).
		Limit(uint(req.Limit())).
		Offset(uint(req.Offset())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return none, fmt.Errorf("build page query: %w", err)
	}

	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return none, fmt.Errorf("find loans: %w", err)
	}
	defer rows.Close()

	var loans []Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return none, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, *l)
	}
	if err := rows.Err(); err != nil {
		return none, fmt.Errorf("read loans: %w", err)
	}

	return paging.NewPage(loans, total, req), nil
}

// filterExpressions maps supplied filter fields to equality predicates,
// OR-combined: a loan matches on its book's ISBN or its customer. An empty
// filter yields no predicates and matches every loan.
func filterExpressions(f Filter) []exp.Expression {
	var terms []exp.Expression
	if f.ISBN != "" {
		terms = append(terms, goqu.I("b.isbn").Eq(f.ISBN))
	}
	if f.Customer != "" {
		terms = append(terms, goqu.I("l.customer").Eq(f.Customer))
	}
	if len(terms) == 0 {
		return nil
	}
	return []exp.Expression{goqu.Or(terms...)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*Loan, error) {
	var l Loan
	var b book.Book
	err := row.Scan(
		&l.ID, &l.Customer, &l.LoanDate, &l.Returned,
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Book = &b
	return &l, nil
}
