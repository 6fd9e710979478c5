package smoke

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Defaults for the smoke run.
const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultWorkers = 4
	DefaultTimeout = 10 * time.Second
)

// Sentinel kinds for smoke runs.
var (
	ErrInvalidConfig = errors.New("invalid smoke config")
	ErrUnhealthy     = errors.New("service is not healthy")
	ErrChecksFailed  = errors.New("smoke checks failed")
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Workers int           // Number of concurrent workers
	Timeout time.Duration // Per-request timeout
	Verbose bool          // Log every check, not only failures
}

// Validate normalises BaseURL and reports the first invalid field.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base url %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result is the outcome of one check.
type Result struct {
	Name     string
	Status   int
	Duration time.Duration
	Err      error
}

// Stats holds run statistics.
type Stats struct {
	Checks    int
	Passed    int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Report is what Run returns: per-check results in check order plus totals.
type Report struct {
	Results []Result
	Stats   Stats
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}
