package contract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"

	"apicontract/internal/apiclient"
	"apicontract/internal/core"
)

// Doer executes one request and returns the fully read response.
// *apiclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

// Runner executes scenarios strictly one after another
type Runner struct {
	client Doer
	logger *slog.Logger
}

// NewRunner creates a runner. A nil logger uses slog.Default().
func NewRunner(client Doer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client: client,
		logger: logger.With("component", "contract"),
	}
}

// Run executes every scenario in order. A failing scenario never stops the run.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *Report {
	report := &Report{Started: time.Now()}
	for _, s := range scenarios {
		report.Results = append(report.Results, r.RunOne(ctx, s))
	}
	report.Elapsed = time.Since(report.Started)

	r.logger.Info("contract run finished",
		"scenarios", len(report.Results),
		"failed", len(report.Failed()),
		"elapsed", report.Elapsed,
	)
	return report
}

// RunOne issues the scenario's request and evaluates all of its expectations.
// Every failing expectation is collected, not just the first.
func (r *Runner) RunOne(ctx context.Context, s Scenario) Result {
	res := Result{Scenario: s.Name, Method: s.method(), Path: s.Path}

	if err := s.Validate(); err != nil {
		res.Err = core.AttributeTo(s.Name, err)
		r.logResult(res)
		return res
	}

	resp, err := r.client.Do(ctx, apiclient.Request{Method: res.Method, Path: s.Path})
	if err != nil {
		res.Err = core.AttributeTo(s.Name, err)
		r.logResult(res)
		return res
	}
	res.StatusCode = resp.StatusCode
	res.Duration = resp.Duration

	for _, exp := range s.Expectations {
		if err := exp.Check(resp); err != nil {
			res.Failures = append(res.Failures, core.AttributeTo(s.Name, err))
		}
	}

	r.logResult(res)
	return res
}

func (r *Runner) logResult(res Result) {
	if res.Passed() {
		r.logger.Info("scenario passed",
			"scenario", res.Scenario,
			"path", res.Path,
			"status", res.StatusCode,
			"duration", res.Duration,
		)
		return
	}
	r.logger.Warn("scenario failed",
		"scenario", res.Scenario,
		"path", res.Path,
		"status", res.StatusCode,
		"error", res.Error(),
	)
}

// CheckIdempotent issues the scenario's request n times (at least twice) and
// fails if any repeat differs from the first in status code or body.
// Bodies are compared by xxhash fingerprint.
func (r *Runner) CheckIdempotent(ctx context.Context, s Scenario, n int) Result {
	if n < 2 {
		n = 2
	}
	name := s.Name + "#idempotent"
	res := Result{Scenario: name, Method: s.method(), Path: s.Path}

	if err := s.Validate(); err != nil {
		res.Err = core.AttributeTo(name, err)
		r.logResult(res)
		return res
	}

	var (
		firstStatus int
		firstDigest uint64
	)
	for i := 0; i < n; i++ {
		resp, err := r.client.Do(ctx, apiclient.Request{Method: res.Method, Path: s.Path})
		if err != nil {
			res.Err = core.AttributeTo(name, err)
			break
		}
		res.Duration += resp.Duration
		digest := xxhash.Sum64(resp.Body)
		if i == 0 {
			firstStatus, firstDigest = resp.StatusCode, digest
			res.StatusCode = resp.StatusCode
			continue
		}
		if resp.StatusCode != firstStatus {
			res.Failures = append(res.Failures, core.NewAssertionError(
				"status stable across repeats",
				fmt.Sprintf("repeat %d returned %d, first returned %d", i, resp.StatusCode, firstStatus),
			).WithScenario(name))
		}
		if digest != firstDigest {
			res.Failures = append(res.Failures, core.NewAssertionError(
				"body stable across repeats",
				fmt.Sprintf("repeat %d body fingerprint %016x differs from %016x", i, digest, firstDigest),
			).WithScenario(name))
		}
	}

	r.logResult(res)
	return res
}
