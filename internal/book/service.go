package book

import (
	"context"
	"fmt"
	"strings"

	"livraria/internal/apperr"
	"livraria/internal/paging"
)

// Service provides catalog business logic.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores a new book after checking that its ISBN is not taken.
// The returned book carries the storage-assigned ID.
func (s *Service) Register(ctx context.Context, b *Book) (*Book, error) {
	if strings.TrimSpace(b.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalidArgument)
	}
	if strings.TrimSpace(b.Author) == "" {
		return nil, fmt.Errorf("%w: author is required", apperr.ErrInvalidArgument)
	}
	if strings.TrimSpace(b.ISBN) == "" {
		return nil, fmt.Errorf("%w: isbn is required", apperr.ErrInvalidArgument)
	}

	exists, err := s.repo.ExistsByISBN(ctx, b.ISBN)
	if err != nil {
		return nil, fmt.Errorf("check isbn: %w", err)
	}
	if exists {
		return nil, &apperr.DuplicateError{Field: "isbn", Value: b.ISBN}
	}

	return s.repo.Save(ctx, b)
}

// GetByID returns the book with the given ID, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByISBN returns the book with the given ISBN, or ErrNotFound. Loan
// creation resolves books through this method.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	return s.repo.FindByISBN(ctx, isbn)
}

// Update replaces the stored book by ID. The book must already carry an ID;
// no ISBN uniqueness re-check is performed here.
func (s *Service) Update(ctx context.Context, b *Book) (*Book, error) {
	if b == nil || b.ID == 0 {
		return nil, fmt.Errorf("%w: book id is required for update", apperr.ErrInvalidArgument)
	}
	return s.repo.Save(ctx, b)
}

// Delete removes the book. The book must carry an ID.
func (s *Service) Delete(ctx context.Context, b *Book) error {
	if b == nil || b.ID == 0 {
		return fmt.Errorf("%w: book id is required for delete", apperr.ErrInvalidArgument)
	}
	return s.repo.Delete(ctx, b)
}

// Find returns the page of books matching the filter.
func (s *Service) Find(ctx context.Context, f Filter, req paging.Request) (paging.Page[Book], error) {
	return s.repo.FindPage(ctx, f, req)
}
