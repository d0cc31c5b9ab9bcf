package loan

import (
	"errors"
	"time"

	"livraria/internal/apperr"
	"livraria/internal/book"
)

// ErrNotFound is returned when a loan is not found.
var ErrNotFound = errors.New("loan not found")

// ErrBookAlreadyLoaned is returned when a book already has an active loan.
// The reason string crosses the boundary verbatim.
var ErrBookAlreadyLoaned = apperr.Business("Book already loaned")

// MaxCustomerLen bounds the borrower name.
const MaxCustomerLen = 100

// Loan records one book lent to one customer. The book reference is
// non-owning and fixed at creation. Returned stays nil while the loan is
// outstanding and is set only through an explicit return marking.
type Loan struct {
	ID       int64      `json:"id"`
	Customer string     `json:"customer"`
	Book     *book.Book `json:"book"`
	LoanDate time.Time  `json:"loan_date"`
	Returned *bool      `json:"returned"`
}

// Active reports whether the loan is still outstanding. A nil flag counts
// as not returned.
func (l *Loan) Active() bool {
	return l.Returned == nil || !*l.Returned
}

// Filter narrows a loan search. A loan matches when its book's ISBN equals
// ISBN or its customer equals Customer, across whichever fields are supplied
// (OR, never AND). An empty filter matches every loan.
type Filter struct {
	ISBN     string
	Customer string
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.ISBN == "" && f.Customer == ""
}
