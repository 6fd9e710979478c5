package api

import (
	"errors"
	"net/http"

	"github.com/okian/shelf/pkg/metrics"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidJSON  = errors.New("invalid JSON body")
	ErrBodyTooLarge = errors.New("request body too large")
)

// errorResponse is the structured body of every status code error handler.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handlerError is the single-field body used by handlers that report their own failures.
type handlerError struct {
	Error string `json:"error"`
}

const genericErrorMessage = "The request could not be completed"

var statusErrors = map[int]errorResponse{
	http.StatusBadRequest: {
		Error:   "Bad request",
		Message: "The request contains invalid parameters",
	},
	http.StatusUnauthorized: {
		Error:   "Unauthorized",
		Message: "Credentials are missing or invalid",
	},
	http.StatusNotFound: {
		Error:   "API not found",
		Message: "The requested resource does not exist",
	},
	http.StatusMethodNotAllowed: {
		Error:   "Method not allowed",
		Message: "The method is not allowed for the requested URL",
	},
	http.StatusInternalServerError: {
		Error:   "Something went wrong on the server",
		Message: "Internal server error",
	},
}

// resolveStatus maps code to the status actually sent and its body.
// Codes below 400 or without a registered reason phrase fall back to 500.
func resolveStatus(code int) (int, errorResponse) {
	if code < http.StatusBadRequest || http.StatusText(code) == "" {
		code = http.StatusInternalServerError
	}
	if body, ok := statusErrors[code]; ok {
		return code, body
	}
	return code, errorResponse{Error: http.StatusText(code), Message: genericErrorMessage}
}

// writeStatusError renders the error handler for code.
func writeStatusError(w http.ResponseWriter, code int) {
	status, body := resolveStatus(code)
	writeJSON(w, status, body)
}

// Abort short-circuits the request to the error handler for code.
func Abort(w http.ResponseWriter, _ *http.Request, code int) {
	status, body := resolveStatus(code)
	metrics.RecordAbort(status)
	writeJSON(w, status, body)
}

// NotFoundHandler renders the 404 handler for unmatched routes, including
// path segments rejected by a route's pattern constraint.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	writeStatusError(w, http.StatusNotFound)
}

// MethodNotAllowedHandler renders the 405 handler.
func MethodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	writeStatusError(w, http.StatusMethodNotAllowed)
}
