package httpx

import (
	"net/http"
	"strconv"

	"livraria/internal/paging"
)

// PageRequest reads the 1-based page and page_size query parameters and maps
// them to the zero-based paging contract.
func PageRequest(r *http.Request) paging.Request {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return paging.NewRequest(page-1, size)
}

// PageMeta builds the pagination meta block for a page, 1-based again for
// the boundary.
func PageMeta[T any](p paging.Page[T]) map[string]interface{} {
	return map[string]interface{}{
		"page":        p.Request.Page + 1,
		"page_size":   p.Request.Size,
		"total":       p.Total,
		"total_pages": p.TotalPages(),
	}
}
