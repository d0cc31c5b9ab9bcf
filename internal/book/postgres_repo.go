package book

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

	"livraria/internal/apperr"
	"livraria/internal/paging"
)

const pgUniqueViolation = "23505"

// PostgresRepo is the pgx-backed Repository implementation.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)", isbn).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by isbn: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepo) FindByISBN(ctx context.Context, isbn string) (*Book, error) {
	return r.findOne(ctx, "isbn = $1", isbn)
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (*Book, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *PostgresRepo) findOne(ctx context.Context, where string, arg any) (*Book, error) {
	query := `
	SELECT id, title, author, isbn, created_at, updated_at
	FROM books
	WHERE ` + where

	var b Book
	err := r.db.QueryRow(ctx, query, arg).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &b, nil
}

func (r *PostgresRepo) Save(ctx context.Context, b *Book) (*Book, error) {
	saved := *b
	var err error
	if b.ID == 0 {
		const query = `
		INSERT INTO books (title, author, isbn, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, created_at, updated_at`
		err = r.db.QueryRow(ctx, query, b.Title, b.Author, b.ISBN).
			Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	} else {
		const query = `
		UPDATE books
		SET title = $1, author = $2, isbn = $3, updated_at = now()
		WHERE id = $4
		RETURNING created_at, updated_at`
		err = r.db.QueryRow(ctx, query, b.Title, b.Author, b.ISBN, b.ID).
			Scan(&saved.CreatedAt, &saved.UpdatedAt)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, &apperr.DuplicateError{Field: "isbn", Value: b.ISBN}
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save book: %w", err)
	}
	return &saved, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, b *Book) error {
	_, err := r.db.Exec(ctx, "DELETE FROM books WHERE id = $1", b.ID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

func (r *PostgresRepo) FindPage(ctx context.Context, f Filter, req paging.Request) (paging.Page[Book], error) {
	var none paging.Page[Book]

	where := filterExpressions(f)

	countSQL, countArgs, err := goqu.Dialect("postgres").
		From("books").
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return none, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return none, fmt.Errorf("count books: %w", err)
	}

	pageSQL, pageArgs, err := goqu.Dialect("postgres").
		From("books").
		Select("id", "title", "author", "isbn", "created_at", "updated_at").
		Where(where...).
		Order(goqu.I("title").Asc(), goqu.I("id").Asc()).
		Limit(uint(req.Limit())).
		Offset(uint(req.Offset())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return none, fmt.Errorf("build page query: %w", err)
	}

	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return none, fmt.Errorf("find books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return none, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return none, fmt.Errorf("read books: %w", err)
	}

	return paging.NewPage(books, total, req), nil
}

// filterExpressions maps non-blank filter fields to case-insensitive
// substring predicates, AND-combined. An empty filter yields no predicates
// and matches every book.
func filterExpressions(f Filter) []exp.Expression {
	var where []exp.Expression
	if f.Title != "" {
		where = append(where, goqu.C("title").ILike("%"+f.Title+"%"))
	}
	if f.Author != "" {
		where = append(where, goqu.C("author").ILike("%"+f.Author+"%"))
	}
	if f.ISBN != "" {
		where = append(where, goqu.C("isbn").ILike("%"+f.ISBN+"%"))
	}
	return where
}
