// Package smoke runs the public HTTP contract checks against a live server.
package smoke

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/shelf/pkg/logger"
)

const workerChannelMultiplier = 2

type job struct {
	index int
	check Check
}

// Run verifies the service is healthy, then runs checks concurrently with
// config.Workers workers. DefaultChecks are used when none are given.
// The returned error wraps ErrChecksFailed when any check failed; the report
// is returned either way once the health check passes.
func Run(ctx context.Context, config *Config, checks ...Check) (*Report, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(checks) == 0 {
		checks = DefaultChecks()
	}

	log := logger.Named("smoke")
	client := newHTTPClient(config.BaseURL, config.Timeout)
	report := &Report{
		Results: make([]Result, len(checks)),
		Stats:   Stats{Checks: len(checks), StartTime: time.Now()},
	}

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("checks", len(checks)),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
	)

	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, err
	}

	var passed, failed int64
	jobs := make(chan job, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := runCheck(ctx, client, j.check)
				report.Results[j.index] = res
				if res.Err != nil {
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "check failed",
						logger.String("check", res.Name),
						logger.Int("status", res.Status),
						logger.Error(res.Err),
					)
					continue
				}
				atomic.AddInt64(&passed, 1)
				if config.Verbose {
					log.Info(ctx, "check passed",
						logger.String("check", res.Name),
						logger.Duration("duration", res.Duration),
					)
				}
			}
		}()
	}

	for i, c := range checks {
		select {
		case jobs <- job{index: i, check: c}:
		case <-ctx.Done():
			// Unsent checks are reported as cancelled.
			for k := i; k < len(checks); k++ {
				report.Results[k] = Result{Name: checks[k].Name, Err: ctx.Err()}
				atomic.AddInt64(&failed, 1)
			}
			close(jobs)
			wg.Wait()
			return finish(ctx, log, report, passed, failed)
		}
	}
	close(jobs)
	wg.Wait()

	return finish(ctx, log, report, passed, failed)
}

func finish(ctx context.Context, log logger.Logger, report *Report, passed, failed int64) (*Report, error) {
	report.Stats.Passed = int(passed)
	report.Stats.Failed = int(failed)
	report.Stats.EndTime = time.Now()
	report.Stats.Duration = report.Stats.EndTime.Sub(report.Stats.StartTime)

	log.Info(ctx, "final statistics",
		logger.Int("checks", report.Stats.Checks),
		logger.Int("passed", report.Stats.Passed),
		logger.Int("failed", report.Stats.Failed),
		logger.Duration("duration", report.Stats.Duration),
	)

	if report.Stats.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrChecksFailed, report.Stats.Failed, report.Stats.Checks)
	}
	return report, nil
}

func runCheck(ctx context.Context, client *HTTPClient, c Check) Result {
	start := time.Now()
	res := Result{Name: c.Name}

	resp, err := client.Do(ctx, c.Request)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	res.Status = resp.Status
	if c.Verify != nil {
		res.Err = c.Verify(resp)
	}
	return res
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/health"})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.Status)
	}
	return nil
}
