package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// uuidPattern constrains the /user route so malformed IDs never reach the handler.
const uuidPattern = "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}"

// UserHandler demonstrates a typed path parameter.
type UserHandler struct{}

// NewUserHandler creates a new user handler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

type userResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// HandleGetUser handles GET /user/{userID}.
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		NotFoundHandler(w, r)
		return
	}
	userID := id.String()
	writeJSON(w, http.StatusOK, userResponse{
		UserID:  userID,
		Message: "Fetching user id with " + userID,
	})
}
