// Package repository defines the book store interface and its fixture-backed implementation.
package repository

import (
	"context"

	"github.com/okian/shelf/internal/domain/book"
)

// Store provides read access to book records.
type Store interface {
	// Get returns the book with the exact ISBN.
	// Returns ErrNotFound if no such book exists.
	Get(ctx context.Context, isbn string) (book.Book, error)

	// Count returns the number of books in the store.
	Count(ctx context.Context) int
}
