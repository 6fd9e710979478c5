// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/shelf/internal/domain/book"
	"github.com/okian/shelf/pkg/logger"
	"github.com/okian/shelf/pkg/metrics"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	BookDependencies
	AuthorDependencies
}

// BookDependencies looks up fixture records.
type BookDependencies interface {
	Book(ctx context.Context, isbn string) (book.Book, error)
}

// AuthorDependencies performs the outbound author search.
type AuthorDependencies interface {
	SearchAuthors(ctx context.Context, name string) (json.RawMessage, error)
}

// Registrar attaches extra routes to the router, after the API middleware.
type Registrar func(ctx context.Context, r chi.Router)

// Server wires HTTP routes for the API.
type Server struct {
	healthHandler   *HealthHandler
	requestHandler  *RequestHandler
	bookHandler     *BookHandler
	userHandler     *UserHandler
	authorHandler   *AuthorHandler
	responseHandler *ResponseHandler

	logger       logger.Logger
	debug        bool
	maxBodyBytes int64
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used by the access log and recovery middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDebug mounts the pprof routes under /debug.
func WithDebug(debug bool) Option {
	return func(s *Server) {
		s.debug = debug
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		requestHandler:  NewRequestHandler(),
		bookHandler:     NewBookHandler(deps),
		userHandler:     NewUserHandler(),
		authorHandler:   NewAuthorHandler(deps),
		responseHandler: NewResponseHandler(),
		maxBodyBytes:    defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}
	return s
}

// Router builds the chi router: middleware, error handlers, API routes,
// then any extra registrars (greeting page, docs).
func (s *Server) Router(ctx context.Context, extras ...Registrar) chi.Router {
	r := chi.NewRouter()

	r.Use(
		RequestIDMiddleware,
		MetricsMiddleware,
		AccessLogMiddleware(s.logger),
		RecoveryMiddleware(s.logger),
		middleware.GetHead,
		BodyLimitMiddleware(s.maxBodyBytes),
	)
	r.NotFound(NotFoundHandler)
	r.MethodNotAllowed(MethodNotAllowedHandler)

	s.Register(ctx, r)
	for _, register := range extras {
		register(ctx, r)
	}

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if s.debug {
		r.Mount("/debug", middleware.Profiler())
	}
	return r
}

// Register attaches the API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/health", s.healthHandler.HandleHealth)
	r.Post("/health", s.healthHandler.HandleHealth)

	r.Get("/request-info", s.requestHandler.HandleRequestInfo)
	r.Get("/query-params", s.requestHandler.HandleQueryParams)
	r.Post("/submit-form", s.requestHandler.HandleSubmitForm)

	r.Get("/book/{isbn}", s.bookHandler.HandleGetBook)
	r.Get("/user/{userID:"+uuidPattern+"}", s.userHandler.HandleGetUser)
	r.Get("/external/author/{name}", s.authorHandler.HandleSearchAuthor)

	r.Get("/custom-response", s.responseHandler.HandleCustomResponse)
	r.Get("/redirect-example", s.responseHandler.HandleRedirect)
	r.Get("/abort-example/{code:[0-9]+}", s.responseHandler.HandleAbort)
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// pathParam returns a decoded path segment. chi matches against RawPath when
// the request carried escapes that Path cannot represent, e.g. %2F.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
