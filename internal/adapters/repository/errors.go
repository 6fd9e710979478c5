package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("book not found")
	ErrEmptyISBN     = errors.New("book has empty isbn")
	ErrDuplicateISBN = errors.New("duplicate isbn")
)
