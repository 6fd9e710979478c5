package repository

import (
	"context"
	"fmt"

	"github.com/okian/shelf/internal/domain/book"
)

// FixtureStore is an immutable in-memory book table.
// It is built once and never written to afterwards, so it is safe for
// concurrent readers without locking.
type FixtureStore struct {
	byISBN map[string]book.Book
}

var _ Store = (*FixtureStore)(nil)

// NewFixtureStore builds the table from book.Seed() or the records passed via WithBooks.
func NewFixtureStore(_ context.Context, opts ...Option) (*FixtureStore, error) {
	o := fixtureOptions{books: book.Seed()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &FixtureStore{
		byISBN: make(map[string]book.Book, len(o.books)),
	}
	for _, b := range o.books {
		if b.ISBN == "" {
			return nil, fmt.Errorf("%w: title %q", ErrEmptyISBN, b.Title)
		}
		if _, exists := s.byISBN[b.ISBN]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateISBN, b.ISBN)
		}
		s.byISBN[b.ISBN] = b
	}
	return s, nil
}

// Get looks up a book by exact ISBN match.
func (s *FixtureStore) Get(_ context.Context, isbn string) (book.Book, error) {
	b, ok := s.byISBN[isbn]
	if !ok {
		return book.Book{}, fmt.Errorf("%w: %s", ErrNotFound, isbn)
	}
	return b, nil
}

// Count returns the number of books.
func (s *FixtureStore) Count(_ context.Context) int {
	return len(s.byISBN)
}
