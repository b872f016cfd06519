// Package main serves a deterministic stand-in for the posts/comments API so
// the contract can be exercised without network access.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apicontract/config"
	"apicontract/internal/logging"
	"apicontract/internal/stub"
	"apicontract/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run serves until ctx is done, then shuts down gracefully. It returns 0 on a
// clean stop, 1 when the server cannot start or stop, 2 on bad usage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stubserver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addrFlag := fs.String("addr", "", "Listen address (overrides STUB_ADDR)")
	versionFlag := fs.Bool("version", false, "Print version information")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		_, _ = fmt.Fprintln(stdout, version.Info())
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{Format: cfg.Logging.Format, Level: cfg.Logging.Level, Out: stderr})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to configure logging: %v\n", err)
		return 1
	}
	slog.SetDefault(logger)

	logger.Info("starting stubserver",
		"version", version.Version,
		"commit", version.Commit,
		"posts", cfg.Stub.Posts,
		"comments_per_post", cfg.Stub.CommentsPerPost,
	)

	srv := stub.New(stub.NewDataset(cfg.Stub.Posts, cfg.Stub.CommentsPerPost), &stub.Config{
		MetricsEnabled: cfg.Stub.MetricsEnabled,
		Logger:         logger,
	})
	if cfg.Stub.MetricsEnabled {
		logger.Info("prometheus metrics enabled", "endpoint", "/metrics")
	}

	addr := cfg.Stub.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}
	logger.Info("starting server", "address", addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	select {
	case err := <-errCh:
		logger.Error("server failed to start", "error", err)
		return 1
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped with error", "error", err)
		return 1
	}

	logger.Info("server stopped gracefully")
	return 0
}
