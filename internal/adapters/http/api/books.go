package api

import (
	"errors"
	"net/http"

	"github.com/okian/shelf/internal/adapters/repository"
)

// BookHandler serves fixture book lookups.
type BookHandler struct {
	deps BookDependencies
}

// NewBookHandler creates a new book handler.
func NewBookHandler(deps BookDependencies) *BookHandler {
	return &BookHandler{deps: deps}
}

// HandleGetBook handles GET /book/{isbn}.
func (h *BookHandler) HandleGetBook(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Book(r.Context(), pathParam(r, "isbn"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, b)
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, handlerError{Error: "Book not found"})
	default:
		writeStatusError(w, http.StatusInternalServerError)
	}
}
