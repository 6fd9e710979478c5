package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/shelf/internal/smoke"
	"github.com/okian/shelf/pkg/logger"
)

const defaultRunTimeout = 2 * time.Minute

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shelf-smoke",
		Usage: "Check a running shelf server against its HTTP contract",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: smoke.DefaultBaseURL, Usage: "base URL of the service", EnvVars: []string{"SHELF_SMOKE_URL"}},
			&cli.IntFlag{Name: "workers", Value: smoke.DefaultWorkers, Usage: "number of concurrent workers"},
			&cli.DurationFlag{Name: "timeout", Value: smoke.DefaultTimeout, Usage: "per-request timeout"},
			&cli.BoolFlag{Name: "verbose", Usage: "log passing checks too"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if err := logger.Init(); err != nil {
		return err
	}
	if c.Bool("verbose") {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	_, err := smoke.Run(ctx, &smoke.Config{
		BaseURL: c.String("url"),
		Workers: c.Int("workers"),
		Timeout: c.Duration("timeout"),
		Verbose: c.Bool("verbose"),
	})
	return err
}
