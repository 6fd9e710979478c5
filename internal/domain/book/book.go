// Package book contains the book record and its seed data.
package book

// Book is a read-only catalogue record keyed by ISBN.
type Book struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Seed returns the records loaded into the fixture table at startup.
// A fresh slice is returned on every call so callers cannot mutate the seed.
func Seed() []Book {
	return []Book{
		{
			ISBN:   "9780345391803",
			Title:  "The Hitchhiker's Guide to the Galaxy",
			Author: "Douglas Adams",
		},
		{
			ISBN:   "9780061120084",
			Title:  "To Kill a Mockingbird",
			Author: "Harper Lee",
		},
	}
}
