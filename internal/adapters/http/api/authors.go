package api

import (
	"errors"
	"net/http"

	"github.com/okian/shelf/internal/adapters/openlibrary"
)

// AuthorHandler relays author searches to the upstream catalogue.
type AuthorHandler struct {
	deps AuthorDependencies
}

// NewAuthorHandler creates a new author handler.
func NewAuthorHandler(deps AuthorDependencies) *AuthorHandler {
	return &AuthorHandler{deps: deps}
}

// HandleSearchAuthor handles GET /external/author/{name}.
//
// Upstream 200 is relayed verbatim, 400 becomes 404, any other status 500.
// Transport and decode failures surface their error text with a 500.
func (h *AuthorHandler) HandleSearchAuthor(w http.ResponseWriter, r *http.Request) {
	body, err := h.deps.SearchAuthors(r.Context(), pathParam(r, "name"))
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	var statusErr *openlibrary.StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusBadRequest:
		writeJSON(w, http.StatusNotFound, handlerError{Error: "Resource not available"})
	case errors.As(err, &statusErr):
		writeJSON(w, http.StatusInternalServerError, handlerError{Error: "Something went wrong"})
	default:
		writeJSON(w, http.StatusInternalServerError, handlerError{Error: err.Error()})
	}
}
