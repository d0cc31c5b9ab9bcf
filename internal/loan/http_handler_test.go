package loan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"livraria/internal/book"
	"livraria/internal/paging"
	"livraria/internal/testutil"
)

type mockBookResolver struct {
	mock.Mock
}

func (m *mockBookResolver) GetByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*book.Book), args.Error(1)
}

func (m *mockBookResolver) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*book.Book), args.Error(1)
}

func newHandler(repo *mockRepository, books *mockBookResolver) *HTTPHandler {
	return NewHTTPHandler(NewService(repo), books)
}

func TestHTTPHandler_Create(t *testing.T) {
	t.Run("issues a loan and returns its id", func(t *testing.T) {
		repo := new(mockRepository)
		books := new(mockBookResolver)
		handler := newHandler(repo, books)

		books.On("GetByISBN", mock.Anything, "001").Return(loanedBook(), nil)
		repo.On("ExistsActiveByBook", mock.Anything, int64(1)).Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*loan.Loan")).
			Return(&Loan{ID: 1, Customer: "Maria", Book: loanedBook(), LoanDate: time.Now()}, nil)

		r := testutil.NewRequest(http.MethodPost, "/api/loans",
			map[string]string{"isbn": "001", "customer": "Maria"})
		w := httptest.NewRecorder()
		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusCreated, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, float64(1), data["id"])
	})

	t.Run("rejects an unknown isbn", func(t *testing.T) {
		repo := new(mockRepository)
		books := new(mockBookResolver)
		handler := newHandler(repo, books)

		books.On("GetByISBN", mock.Anything, "404").Return(nil, book.ErrNotFound)

		r := testutil.NewRequest(http.MethodPost, "/api/loans",
			map[string]string{"isbn": "404", "customer": "Maria"})
		w := httptest.NewRecorder()
		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Book not found for passed isbn", testutil.ErrorMessage(resp.Body))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a book that is already loaned", func(t *testing.T) {
		repo := new(mockRepository)
		books := new(mockBookResolver)
		handler := newHandler(repo, books)

		books.On("GetByISBN", mock.Anything, "001").Return(loanedBook(), nil)
		repo.On("ExistsActiveByBook", mock.Anything, int64(1)).Return(true, nil)

		r := testutil.NewRequest(http.MethodPost, "/api/loans",
			map[string]string{"isbn": "001", "customer": "José"})
		w := httptest.NewRecorder()
		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "BUSINESS_RULE", testutil.ErrorCode(resp.Body))
		assert.Equal(t, "Book already loaned", testutil.ErrorMessage(resp.Body))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		repo := new(mockRepository)
		books := new(mockBookResolver)
		handler := newHandler(repo, books)

		r := testutil.NewRequest(http.MethodPost, "/api/loans", map[string]string{"isbn": "001"})
		w := httptest.NewRecorder()
		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", testutil.ErrorCode(resp.Body))
		books.AssertNotCalled(t, "GetByISBN", mock.Anything, mock.Anything)
	})
}

func TestHTTPHandler_Return(t *testing.T) {
	t.Run("marks the loan returned", func(t *testing.T) {
		repo := new(mockRepository)
		books := new(mockBookResolver)
		handler := newHandler(repo, books)

		stored := &Loan{ID: 1, Customer: "Maria", Book: loanedBook(), LoanDate: time.Now()}
		repo.On("FindByID", mock.Anything, int64(1)).Return(stored, nil)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(l *Loan) bool {
			return l.ID == 1 && l.Returned != nil && *l.Returned
		})).Return(stored, nil)

		r := testutil.NewRequest(http.MethodPatch, "/api/loans/1", map[string]bool{"returned": true})
		r.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		handler.Return(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("404 when the loan is absent", func(t *testing.T) {
		repo := new(mockRepository)
		books := new(mockBookResolver)
		handler := newHandler(repo, books)

		repo.On("FindByID", mock.Anything, int64(9)).Return(nil, ErrNotFound)

		r := testutil.NewRequest(http.MethodPatch, "/api/loans/9", map[string]bool{"returned": true})
		r.SetPathValue("id", "9")
		w := httptest.NewRecorder()
		handler.Return(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	repo := new(mockRepository)
	books := new(mockBookResolver)
	handler := newHandler(repo, books)

	stored := &Loan{ID: 1, Customer: "Maria", Book: loanedBook(), LoanDate: time.Now()}
	repo.On("FindByID", mock.Anything, int64(1)).Return(stored, nil)

	r := testutil.NewRequest(http.MethodGet, "/api/loans/1", nil)
	r.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	handler.Get(w, r)

	resp := testutil.RecordHTTPResponse(w)
	require.Equal(t, http.StatusOK, resp.Code)
	data := resp.Body["data"].(map[string]interface{})
	assert.Equal(t, "Maria", data["customer"])
	embedded := data["book"].(map[string]interface{})
	assert.Equal(t, "001", embedded["isbn"])
}

func TestHTTPHandler_List(t *testing.T) {
	repo := new(mockRepository)
	books := new(mockBookResolver)
	handler := newHandler(repo, books)

	req := paging.NewRequest(0, 20)
	f := Filter{ISBN: "001", Customer: "Maria"}
	stored := []Loan{{ID: 1, Customer: "Maria", Book: loanedBook(), LoanDate: time.Now()}}
	repo.On("FindPage", mock.Anything, f, req).Return(paging.NewPage(stored, 1, req), nil)

	r := testutil.NewRequest(http.MethodGet, "/api/loans?isbn=001&customer=Maria", nil)
	w := httptest.NewRecorder()
	handler.List(w, r)

	resp := testutil.RecordHTTPResponse(w)
	require.Equal(t, http.StatusOK, resp.Code)
	meta := resp.Body["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["total"])
	repo.AssertCalled(t, "FindPage", mock.Anything, f, req)
}

func TestHTTPHandler_ListByBook(t *testing.T) {
	t.Run("pages the book's loans", func(t *testing.T) {
		repo := new(mockRepository)
		books := new(mockBookResolver)
		handler := newHandler(repo, books)

		books.On("GetByID", mock.Anything, int64(1)).Return(loanedBook(), nil)
		req := paging.NewRequest(0, 20)
		stored := []Loan{{ID: 1, Customer: "Maria", Book: loanedBook(), LoanDate: time.Now()}}
		repo.On("FindPageByBook", mock.Anything, int64(1), req).Return(paging.NewPage(stored, 1, req), nil)

		r := testutil.NewRequest(http.MethodGet, "/api/books/1/loans", nil)
		r.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		handler.ListByBook(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].([]interface{})
		assert.Len(t, data, 1)
	})

	t.Run("404 when the book is absent", func(t *testing.T) {
		repo := new(mockRepository)
		books := new(mockBookResolver)
		handler := newHandler(repo, books)

		books.On("GetByID", mock.Anything, int64(9)).Return(nil, book.ErrNotFound)

		r := testutil.NewRequest(http.MethodGet, "/api/books/9/loans", nil)
		r.SetPathValue("id", "9")
		w := httptest.NewRecorder()
		handler.ListByBook(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		repo.AssertNotCalled(t, "FindPageByBook", mock.Anything, mock.Anything, mock.Anything)
	})
}
