package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ResponseHandler demonstrates shaping responses: headers, cookies,
// redirects and aborts.
type ResponseHandler struct{}

// NewResponseHandler creates a new response handler.
func NewResponseHandler() *ResponseHandler {
	return &ResponseHandler{}
}

// HandleCustomResponse handles GET /custom-response.
func (h *ResponseHandler) HandleCustomResponse(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("X-Custom-Header", "CustomValue")
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "1234567", Path: "/"})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(messageResponse{Message: "Custom response created"})
}

// HandleRedirect handles GET /redirect-example.
func (h *ResponseHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/health", http.StatusFound)
}

// HandleAbort handles GET /abort-example/{code}. The route only admits
// digits; a value too large for int aborts with 500.
func (h *ResponseHandler) HandleAbort(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		Abort(w, r, http.StatusInternalServerError)
		return
	}
	if code >= http.StatusBadRequest {
		Abort(w, r, code)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Success"})
}
