package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/shelf/internal/adapters/http/api"
	"github.com/okian/shelf/internal/adapters/http/site"
	"github.com/okian/shelf/internal/adapters/http/swagger"
	"github.com/okian/shelf/internal/adapters/openlibrary"
	app "github.com/okian/shelf/internal/app"
	"github.com/okian/shelf/internal/config"
	"github.com/okian/shelf/pkg/logger"
	"github.com/okian/shelf/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// Use stderr since the logger may not be available yet
		os.Stderr.WriteString("shelf: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shelf",
		Usage: "Serve the shelf learning API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "0.0.0.0", Usage: "bind address"},
			&cli.IntFlag{Name: "port", Value: 5000, Usage: "TCP port"},
			&cli.BoolFlag{Name: "debug", Usage: "debug logging and /debug/pprof routes"},
			&cli.StringFlag{Name: "config", Usage: "YAML config file (overrides " + config.EnvConfigFile + ")"},
		},
		Action: serve,
	}
}

// flagOverrides returns only the flags set on the command line so that
// unset flag defaults never shadow file or env values.
func flagOverrides(c *cli.Context) map[string]interface{} {
	overrides := map[string]interface{}{}
	if c.IsSet("host") {
		overrides["host"] = c.String("host")
	}
	if c.IsSet("port") {
		overrides["port"] = c.Int("port")
	}
	if c.IsSet("debug") {
		overrides["debug"] = c.Bool("debug")
	}
	return overrides
}

func serve(c *cli.Context) error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, config.WithFile(c.String("config")), config.WithOverrides(flagOverrides(c)))
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if cfg.Debug {
		_ = logger.SetLevelString("debug")
	}

	svc := app.New(
		app.WithLogger(loggerInstance.Named("service")),
		app.WithOpenLibraryOptions(
			openlibrary.WithBaseURL(cfg.OpenLibraryURL),
			openlibrary.WithTimeout(cfg.UpstreamTimeout()),
			openlibrary.WithUserAgent(cfg.UserAgent),
			openlibrary.WithRateLimit(cfg.UpstreamRPS),
		),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	router := api.NewServer(svc,
		api.WithLogger(loggerInstance.Named("http")),
		api.WithDebug(cfg.Debug),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	).Router(ctx, site.Register, swagger.Register)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr()), logger.Bool("debug", cfg.Debug))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystemMetrics(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
