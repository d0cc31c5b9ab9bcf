package book

import (
	"context"

	"livraria/internal/paging"
)

// Repository defines the contract for book storage.
type Repository interface {
	// ExistsByISBN reports whether a book with the given ISBN is stored.
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	// FindByISBN returns the book with the given ISBN, or ErrNotFound.
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	// FindByID returns the book with the given ID, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*Book, error)
	// Save inserts the book when its ID is zero, otherwise replaces the
	// stored row by ID. Returns the persisted book.
	Save(ctx context.Context, b *Book) (*Book, error)
	// Delete removes the book by ID. Deleting a missing ID is not an error.
	Delete(ctx context.Context, b *Book) error
	// FindPage returns the books matching the filter, paged and counted.
	FindPage(ctx context.Context, f Filter, req paging.Request) (paging.Page[Book], error)
}
