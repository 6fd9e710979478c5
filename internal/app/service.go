// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/shelf/internal/adapters/openlibrary"
	repository "github.com/okian/shelf/internal/adapters/repository"
	"github.com/okian/shelf/internal/domain/book"
	"github.com/okian/shelf/pkg/logger"
	"github.com/okian/shelf/pkg/metrics"
)

const upstreamOpenLibrary = "openlibrary"

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("service not started")
)

// AuthorSearcher performs the outbound author search.
type AuthorSearcher interface {
	SearchAuthors(ctx context.Context, name string) (json.RawMessage, error)
}

// Service implements the API dependencies for the shelf API.
type Service struct {
	mu sync.RWMutex

	// Core components
	books   repository.Store
	authors AuthorSearcher

	// Configuration used when components are built lazily in Start.
	clientOpts []openlibrary.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore injects a book store instead of the default fixture table.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.books = store
		}
	}
}

// WithAuthorSearcher injects the author search client.
func WithAuthorSearcher(a AuthorSearcher) Option {
	return func(s *Service) {
		if a != nil {
			s.authors = a
		}
	}
}

// WithOpenLibraryOptions configures the default OpenLibrary client built in Start.
func WithOpenLibraryOptions(opts ...openlibrary.Option) Option {
	return func(s *Service) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// New creates a new service with the given options.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds any missing components. It is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.books == nil {
		store, err := repository.NewFixtureStore(ctx)
		if err != nil {
			return fmt.Errorf("build fixture store: %w", err)
		}
		s.books = store
	}
	if s.authors == nil {
		s.authors = openlibrary.NewClient(s.clientOpts...)
	}

	count := s.books.Count(ctx)
	metrics.SetFixtureBooks(count)
	s.started = true

	s.logger.Info(ctx, "shelf service started", logger.Int("books", count))
	return nil
}

// Stop marks the service stopped. Nothing holds external resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "shelf service stopped")
}

// Book returns the fixture record for isbn or repository.ErrNotFound.
func (s *Service) Book(ctx context.Context, isbn string) (book.Book, error) {
	books, _, err := s.components()
	if err != nil {
		return book.Book{}, err
	}

	b, err := books.Get(ctx, isbn)
	if err != nil {
		metrics.RecordBookLookup(metrics.BookMissing)
		s.logger.Debug(ctx, "book lookup missed", logger.String("isbn", isbn))
		return book.Book{}, err
	}
	metrics.RecordBookLookup(metrics.BookFound)
	return b, nil
}

// SearchAuthors relays the author search to the upstream client.
func (s *Service) SearchAuthors(ctx context.Context, name string) (json.RawMessage, error) {
	_, authors, err := s.components()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := authors.SearchAuthors(ctx, name)
	elapsed := time.Since(start)
	outcome := upstreamOutcome(err)
	metrics.RecordUpstream(upstreamOpenLibrary, outcome, float64(elapsed.Milliseconds()))

	if err != nil {
		s.logger.Warn(ctx, "author search failed",
			logger.String("author", name),
			logger.String("outcome", outcome),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return nil, err
	}
	s.logger.Debug(ctx, "author search completed",
		logger.String("author", name),
		logger.Duration("elapsed", elapsed),
	)
	return raw, nil
}

func (s *Service) components() (repository.Store, AuthorSearcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.books, s.authors, nil
}

// upstreamOutcome classifies an author search error for metrics.
func upstreamOutcome(err error) string {
	if err == nil {
		return metrics.UpstreamOK
	}
	var se *openlibrary.StatusError
	switch {
	case errors.As(err, &se) && se.Code == http.StatusBadRequest:
		return metrics.UpstreamBadRequest
	case errors.As(err, &se):
		return metrics.UpstreamBadStatus
	case errors.Is(err, openlibrary.ErrDecode), errors.Is(err, openlibrary.ErrResponseTooLarge):
		return metrics.UpstreamBadPayload
	case openlibrary.IsTimeout(err):
		return metrics.UpstreamTimeout
	default:
		return metrics.UpstreamUnreachable
	}
}
