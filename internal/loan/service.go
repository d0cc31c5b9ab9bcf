package loan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"livraria/internal/apperr"
	"livraria/internal/book"
	"livraria/internal/paging"
)

// Service provides loan business logic. It never resolves books itself: the
// caller passes an already-resolved book reference into Create.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new loan service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create issues a loan for an already-resolved book. It fails with
// ErrBookAlreadyLoaned when the book has an outstanding loan. On success the
// loan date is set to the current time, the returned flag stays outstanding,
// and the persisted loan carries its assigned ID.
func (s *Service) Create(ctx context.Context, l *Loan) (*Loan, error) {
	if l.Book == nil || l.Book.ID == 0 {
		return nil, fmt.Errorf("%w: loan requires a resolved book", apperr.ErrInvalidArgument)
	}
	if strings.TrimSpace(l.Customer) == "" {
		return nil, fmt.Errorf("%w: customer is required", apperr.ErrInvalidArgument)
	}
	if len(l.Customer) > MaxCustomerLen {
		return nil, fmt.Errorf("%w: customer exceeds %d characters", apperr.ErrInvalidArgument, MaxCustomerLen)
	}

	active, err := s.repo.ExistsActiveByBook(ctx, l.Book.ID)
	if err != nil {
		return nil, fmt.Errorf("check active loan: %w", err)
	}
	if active {
		return nil, ErrBookAlreadyLoaned
	}

	l.LoanDate = s.now()
	l.Returned = nil
	return s.repo.Save(ctx, l)
}

// GetByID returns the loan with the given ID, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (*Loan, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces the stored loan by ID. This is the return-marking path:
// the caller fetches the loan, flips the returned flag, and passes it back.
// The active-loan invariant is not re-checked here; marking a return only
// relaxes it.
func (s *Service) Update(ctx context.Context, l *Loan) (*Loan, error) {
	if l == nil || l.ID == 0 {
		return nil, fmt.Errorf("%w: loan id is required for update", apperr.ErrInvalidArgument)
	}
	return s.repo.Save(ctx, l)
}

// Find returns the page of loans matching the filter. Filter fields combine
// with OR: a loan matches on either its book's ISBN or its customer.
func (s *Service) Find(ctx context.Context, f Filter, req paging.Request) (paging.Page[Loan], error) {
	return s.repo.FindPage(ctx, f, req)
}

// LoansByBook returns every loan for the book, returned or not, paged.
func (s *Service) LoansByBook(ctx context.Context, b *book.Book, req paging.Request) (paging.Page[Loan], error) {
	if b == nil || b.ID == 0 {
		return paging.Page[Loan]{}, fmt.Errorf("%w: book id is required", apperr.ErrInvalidArgument)
	}
	return s.repo.FindPageByBook(ctx, b.ID, req)
}
