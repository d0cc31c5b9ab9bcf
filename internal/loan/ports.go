package loan

import (
	"context"

	"livraria/internal/paging"
)

// Repository defines the contract for loan storage.
type Repository interface {
	// ExistsActiveByBook reports whether the book has a loan that is not
	// marked returned.
	ExistsActiveByBook(ctx context.Context, bookID int64) (bool, error)
	// FindByID returns the loan with the given ID, book embedded, or
	// ErrNotFound.
	FindByID(ctx context.Context, id int64) (*Loan, error)
	// Save inserts the loan when its ID is zero, otherwise replaces the
	// stored row by ID. The book reference and loan date are written only
	// on insert.
	Save(ctx context.Context, l *Loan) (*Loan, error)
	// FindPage returns the loans matching the filter, paged and counted.
	FindPage(ctx context.Context, f Filter, req paging.Request) (paging.Page[Loan], error)
	// FindPageByBook returns every loan for the book, returned or not.
	FindPageByBook(ctx context.Context, bookID int64, req paging.Request) (paging.Page[Loan], error)
}
