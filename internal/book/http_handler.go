package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"livraria/internal/apperr"
	"livraria/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type registerRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required"`
}

type updateRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
}

// Register handles POST /api/books.
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	saved, err := h.svc.Register(r.Context(), &Book{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
	})
	if err != nil {
		switch {
		case apperr.IsDuplicate(err):
			httpx.JSONError(w, r, http.StatusBadRequest, "DUPLICATE_ISBN", err.Error(), nil)
		case errors.Is(err, apperr.ErrInvalidArgument):
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessCreated(w, r, saved)
}

// Get handles GET /api/books/{id}.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondLookupError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}

// Update handles PUT /api/books/{id}. The ISBN is not updatable through
// this route; only title and author are replaced.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	b, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondLookupError(w, r, err)
		return
	}

	b.Title = req.Title
	b.Author = req.Author

	updated, err := h.svc.Update(r.Context(), b)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, updated, nil)
}

// Delete handles DELETE /api/books/{id}.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondLookupError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), b); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// List handles GET /api/books.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f := Filter{
		Title:  query.Get("title"),
		Author: query.Get("author"),
		ISBN:   query.Get("isbn"),
	}

	page, err := h.svc.Find(r.Context(), f, httpx.PageRequest(r))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, page.Content, httpx.PageMeta(page))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return 0, false
	}
	return id, true
}

func respondLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}
