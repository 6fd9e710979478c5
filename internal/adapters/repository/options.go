package repository

import "github.com/okian/shelf/internal/domain/book"

// Option applies a configuration option to the FixtureStore.
type Option func(*fixtureOptions)

type fixtureOptions struct {
	books []book.Book
}

// WithBooks replaces the default seed with the given records.
func WithBooks(books ...book.Book) Option {
	return func(o *fixtureOptions) {
		o.books = books
	}
}
