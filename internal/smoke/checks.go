package smoke

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// Request describes one call made by a check. Path includes any query string.
type Request struct {
	Method string
	Path   string
	Header map[string]string
	Body   string
}

// Check is a single request with its expectations.
type Check struct {
	Name    string
	Request Request
	Verify  func(*Response) error
}

const (
	seededISBN  = "9780345391803"
	missingISBN = "0000000000000"
	sampleUUID  = "123e4567-e89b-12d3-a456-426614174000"
)

var errMismatch = errors.New("unexpected response")

// DefaultChecks returns the checks covering the public HTTP contract.
func DefaultChecks() []Check {
	return []Check{
		{
			Name:    "greeting page",
			Request: Request{Method: http.MethodGet, Path: "/"},
			Verify: all(status(http.StatusOK), func(r *Response) error {
				if len(r.Body) == 0 || !strings.HasPrefix(r.Header.Get("Content-Type"), "text/html") {
					return fmt.Errorf("%w: expected a non-empty HTML body", errMismatch)
				}
				return nil
			}),
		},
		{
			Name:    "health via GET",
			Request: Request{Method: http.MethodGet, Path: "/health"},
			Verify:  all(status(http.StatusOK), field("method", "GET"), field("status", "ok")),
		},
		{
			Name:    "health via POST",
			Request: Request{Method: http.MethodPost, Path: "/health"},
			Verify:  all(status(http.StatusOK), field("method", "POST")),
		},
		{
			Name:    "query params defaults",
			Request: Request{Method: http.MethodGet, Path: "/query-params"},
			Verify: all(status(http.StatusOK),
				field("course", "Not Provided"),
				field("ratings", "Not Provided"),
				field("all_params", map[string]interface{}{}),
			),
		},
		{
			Name:    "seeded book",
			Request: Request{Method: http.MethodGet, Path: "/book/" + seededISBN},
			Verify: all(status(http.StatusOK),
				field("isbn", seededISBN),
				field("title", "The Hitchhiker's Guide to the Galaxy"),
				field("author", "Douglas Adams"),
			),
		},
		{
			Name:    "missing book",
			Request: Request{Method: http.MethodGet, Path: "/book/" + missingISBN},
			Verify:  all(status(http.StatusNotFound), field("error", "Book not found")),
		},
		{
			Name:    "malformed user id",
			Request: Request{Method: http.MethodGet, Path: "/user/not-a-uuid"},
			Verify:  status(http.StatusNotFound),
		},
		{
			Name:    "valid user id",
			Request: Request{Method: http.MethodGet, Path: "/user/" + sampleUUID},
			Verify:  all(status(http.StatusOK), field("user_id", sampleUUID)),
		},
		{
			Name:    "abort below 400",
			Request: Request{Method: http.MethodGet, Path: "/abort-example/200"},
			Verify:  all(status(http.StatusOK), field("message", "Success")),
		},
		{
			Name:    "abort with 404",
			Request: Request{Method: http.MethodGet, Path: "/abort-example/404"},
			Verify: all(status(http.StatusNotFound),
				field("error", "API not found"),
				field("message", "The requested resource does not exist"),
			),
		},
		{
			Name:    "custom response",
			Request: Request{Method: http.MethodGet, Path: "/custom-response"},
			Verify: all(status(http.StatusOK), func(r *Response) error {
				if got := r.Header.Get("X-Custom-Header"); got != "CustomValue" {
					return fmt.Errorf("%w: X-Custom-Header = %q", errMismatch, got)
				}
				for _, c := range r.Cookies {
					if c.Name == "session_id" {
						return nil
					}
				}
				return fmt.Errorf("%w: session_id cookie missing", errMismatch)
			}),
		},
		{
			Name:    "redirect",
			Request: Request{Method: http.MethodGet, Path: "/redirect-example"},
			Verify: all(status(http.StatusFound), func(r *Response) error {
				if loc := r.Header.Get("Location"); loc != "/health" {
					return fmt.Errorf("%w: Location = %q", errMismatch, loc)
				}
				return nil
			}),
		},
		{
			Name: "submit JSON",
			Request: Request{
				Method: http.MethodPost,
				Path:   "/submit-form",
				Header: map[string]string{"Content-Type": "application/json"},
				Body:   `{"name":"smoke"}`,
			},
			Verify: all(status(http.StatusCreated), field("message", "JSON data received")),
		},
		{
			Name: "submit form",
			Request: Request{
				Method: http.MethodPost,
				Path:   "/submit-form",
				Header: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
				Body:   "name=smoke",
			},
			Verify: all(status(http.StatusCreated), field("name", "smoke"), field("email", nil)),
		},
		{
			Name:    "unknown route",
			Request: Request{Method: http.MethodGet, Path: "/definitely-not-a-route"},
			Verify:  all(status(http.StatusNotFound), field("error", "API not found")),
		},
	}
}

func all(verifiers ...func(*Response) error) func(*Response) error {
	return func(r *Response) error {
		for _, v := range verifiers {
			if err := v(r); err != nil {
				return err
			}
		}
		return nil
	}
}

func status(want int) func(*Response) error {
	return func(r *Response) error {
		if r.Status != want {
			return fmt.Errorf("%w: status %d, want %d", errMismatch, r.Status, want)
		}
		return nil
	}
}

// field compares a top-level JSON field with want after a generic decode.
func field(key string, want interface{}) func(*Response) error {
	return func(r *Response) error {
		var body map[string]interface{}
		if err := json.Unmarshal(r.Body, &body); err != nil {
			return fmt.Errorf("%w: body is not a JSON object: %w", errMismatch, err)
		}
		got, ok := body[key]
		if !ok {
			return fmt.Errorf("%w: field %q missing", errMismatch, key)
		}
		if !reflect.DeepEqual(got, want) {
			return fmt.Errorf("%w: field %q = %v, want %v", errMismatch, key, got, want)
		}
		return nil
	}
}
