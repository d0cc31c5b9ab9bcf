// Package paging defines the page request and page result contract shared by
// the repository layer and the HTTP boundary.
package paging

// DefaultSize is used when a request carries no usable page size.
const DefaultSize = 20

// MaxSize caps the page size accepted from callers.
const MaxSize = 100

// Request identifies one page of a result set. Page is zero-based.
type Request struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// NewRequest clamps page and size into valid bounds.
func NewRequest(page, size int) Request {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > MaxSize {
		size = DefaultSize
	}
	return Request{Page: page, Size: size}
}

// Offset returns the row offset for the request.
func (r Request) Offset() int {
	return r.Page * r.Size
}

// Limit returns the row limit for the request.
func (r Request) Limit() int {
	return r.Size
}

// Page is one page of content plus the total match count and the request that
// produced it.
type Page[T any] struct {
	Content []T     `json:"content"`
	Total   int     `json:"total"`
	Request Request `json:"page_request"`
}

// NewPage builds a Page, normalizing nil content to an empty slice so JSON
// output is always an array.
func NewPage[T any](content []T, total int, req Request) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{Content: content, Total: total, Request: req}
}

// TotalPages returns the number of pages needed for Total at the request size.
func (p Page[T]) TotalPages() int {
	if p.Request.Size <= 0 {
		return 0
	}
	return (p.Total + p.Request.Size - 1) / p.Request.Size
}
