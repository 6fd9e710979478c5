package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	notProvided   = "Not Provided"
	maxFormMemory = 32 << 20
)

// RequestHandler demonstrates reading request data: metadata, query strings,
// form fields and JSON bodies.
type RequestHandler struct{}

// NewRequestHandler creates a new request handler.
func NewRequestHandler() *RequestHandler {
	return &RequestHandler{}
}

type queryParamsResponse struct {
	Course    string            `json:"course"`
	Ratings   string            `json:"ratings"`
	AllParams map[string]string `json:"all_params"`
}

type jsonSubmission struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type formSubmission struct {
	Message string  `json:"message"`
	Name    *string `json:"name"`
	Email   *string `json:"email"`
}

// HandleRequestInfo handles GET /request-info.
func (h *RequestHandler) HandleRequestInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewRequestInfo(r))
}

// HandleQueryParams handles GET /query-params, e.g. ?course=Capstone&ratings=10.
func (h *RequestHandler) HandleQueryParams(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	all := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			all[key] = values[0]
		}
	}

	writeJSON(w, http.StatusOK, queryParamsResponse{
		Course:    valueOr(all, "course", notProvided),
		Ratings:   valueOr(all, "ratings", notProvided),
		AllParams: all,
	})
}

// HandleSubmitForm handles POST /submit-form. JSON bodies are echoed back;
// anything else is read as a urlencoded or multipart form.
func (h *RequestHandler) HandleSubmitForm(w http.ResponseWriter, r *http.Request) {
	if isJSONContentType(r.Header.Get("Content-Type")) {
		data, err := decodeJSONBody(r)
		if err != nil {
			writeBodyError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, jsonSubmission{Message: "JSON data received", Data: data})
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeBodyError(w, classifyBodyError(err))
		return
	}
	writeJSON(w, http.StatusCreated, formSubmission{
		Message: "Data Received",
		Name:    formValue(r, "name"),
		Email:   formValue(r, "email"),
	})
}

// decodeJSONBody parses the whole body as a single JSON value. Numbers keep
// their source text so large integers echo back unchanged.
func decodeJSONBody(r *http.Request) (interface{}, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, classifyBodyError(err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if rest := bytes.TrimSpace(raw[dec.InputOffset():]); len(rest) > 0 {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidJSON)
	}
	return data, nil
}

func classifyBodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: %w", ErrBodyTooLarge, err)
	}
	return fmt.Errorf("%w: %w", ErrBadRequest, err)
}

func writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		writeStatusError(w, http.StatusRequestEntityTooLarge)
		return
	}
	writeStatusError(w, http.StatusBadRequest)
}

// formValue returns nil when the field was not submitted at all.
func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func valueOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}
