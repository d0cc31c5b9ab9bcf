package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Book represents a catalog entry. The ID is assigned by storage on insert
// and never changes afterwards.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows a catalog search. Blank fields are wildcards; non-blank
// fields match case-insensitively on a substring. An empty filter matches
// every book.
type Filter struct {
	Title  string
	Author string
	ISBN   string
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.Title == "" && f.Author == "" && f.ISBN == ""
}
