// Package main is the entry point for the posts/comments contract checker.
//
// Usage:
//
//	go run ./cmd/apicontract                       # against API_BASE_URL
//	go run ./cmd/apicontract -stub                 # against the in-process stub
//	go run ./cmd/apicontract -catalog scenarios.yaml -repeat 3
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"

	"apicontract/config"
	"apicontract/internal/apiclient"
	"apicontract/internal/contract"
	"apicontract/internal/logging"
	"apicontract/internal/stub"
	"apicontract/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 when every scenario passed, 1 on any
// failure, 2 on bad usage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("apicontract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("base-url", "", "Base URL of the service under test (overrides API_BASE_URL)")
	useStub := fs.Bool("stub", false, "Run against an in-process stub of the service")
	catalogPath := fs.String("catalog", "", "YAML scenario catalog (default: built-in catalog)")
	repeat := fs.Int("repeat", 0, "Also check each scenario is idempotent over n repeated requests")
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

	logger.Info("starting apicontract",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	target := cfg.API.BaseURL
	if *baseURL != "" {
		target = *baseURL
	}
	if *useStub {
		srv := httptest.NewServer(stub.New(stub.NewDataset(cfg.Stub.Posts, cfg.Stub.CommentsPerPost), &stub.Config{Logger: logger}))
		defer srv.Close()
		target = srv.URL
		logger.Info("stub server started", "url", target)
	}

	scenarios, err := loadScenarios(cfg, *catalogPath)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		return 1
	}

	client, err := apiclient.New(target, cfg.API.HTTPClient(), logger)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		return 1
	}

	runner := contract.NewRunner(client, logger)
	report := runner.Run(ctx, scenarios)
	if *repeat > 0 {
		for _, s := range scenarios {
			report.Add(runner.CheckIdempotent(ctx, s, *repeat))
		}
	}

	if err := report.WriteText(stdout); err != nil {
		logger.Error("failed to write report", "error", err)
		return 1
	}
	if !report.Passed() {
		return 1
	}
	return 0
}

func loadScenarios(cfg *config.Config, flagPath string) ([]contract.Scenario, error) {
	path := cfg.Catalog.Path
	if flagPath != "" {
		path = flagPath
	}
	if path == "" {
		return contract.DefaultCatalog(cfg.Fixtures), nil
	}
	return contract.LoadCatalog(path)
}
