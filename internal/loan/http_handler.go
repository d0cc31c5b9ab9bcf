package loan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"livraria/internal/apperr"
	"livraria/internal/book"
	"livraria/internal/httpx"
)

// BookResolver is the slice of the catalog service loan handling needs. The
// handler resolves the book before calling the loan service; the loan
// service never looks books up itself.
type BookResolver interface {
	GetByISBN(ctx context.Context, isbn string) (*book.Book, error)
	GetByID(ctx context.Context, id int64) (*book.Book, error)
}

type HTTPHandler struct {
	svc   *Service
	books BookResolver
}

func NewHTTPHandler(svc *Service, books BookResolver) *HTTPHandler {
	return &HTTPHandler{svc: svc, books: books}
}

type createRequest struct {
	ISBN     string `json:"isbn" validate:"required"`
	Customer string `json:"customer" validate:"required,max=100"`
}

type returnRequest struct {
	Returned bool `json:"returned"`
}

// Create handles POST /api/loans.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	b, err := h.books.GetByISBN(r.Context(), req.ISBN)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusBadRequest, "BOOK_NOT_FOUND", "Book not found for passed isbn", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	saved, err := h.svc.Create(r.Context(), &Loan{Book: b, Customer: req.Customer})
	if err != nil {
		switch {
		case apperr.IsBusiness(err):
			httpx.JSONError(w, r, http.StatusBadRequest, "BUSINESS_RULE", err.Error(), nil)
		case errors.Is(err, apperr.ErrInvalidArgument):
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessCreated(w, r, map[string]any{"id": saved.ID})
}

// Return handles PATCH /api/loans/{id}: it fetches the loan, sets the
// returned flag from the body, and saves it back.
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid loan id")
	if !ok {
		return
	}

	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}

	l, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondLoanLookupError(w, r, err)
		return
	}

	l.Returned = &req.Returned

	updated, err := h.svc.Update(r.Context(), l)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, updated, nil)
}

// Get handles GET /api/loans/{id}.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid loan id")
	if !ok {
		return
	}

	l, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondLoanLookupError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, l, nil)
}

// List handles GET /api/loans.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f := Filter{
		ISBN:     query.Get("isbn"),
		Customer: query.Get("customer"),
	}

	page, err := h.svc.Find(r.Context(), f, httpx.PageRequest(r))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, page.Content, httpx.PageMeta(page))
}

// ListByBook handles GET /api/books/{id}/loans.
func (h *HTTPHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid book id")
	if !ok {
		return
	}

	b, err := h.books.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	page, err := h.svc.LoansByBook(r.Context(), b, httpx.PageRequest(r))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, page.Content, httpx.PageMeta(page))
}

func pathID(w http.ResponseWriter, r *http.Request, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", message, nil)
		return 0, false
	}
	return id, true
}

func respondLoanLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Loan not found", nil)
		return
	}
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}
