// Package contract checks a posts/comments JSON API against a catalog of
// scenarios. Each scenario is one GET followed by a set of expectations.
package contract

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"apicontract/internal/core"
)

// Scenario is one independent request/response/assert case
type Scenario struct {
	Name         string
	Method       string
	Path         string
	Expectations []Expectation
}

// Validate checks that the scenario can be executed.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return core.NewConfigError("scenario name is required", nil)
	}
	if strings.TrimSpace(s.Path) == "" {
		return core.NewConfigError(fmt.Sprintf("scenario %s: path is required", s.Name), nil)
	}
	if m := strings.ToUpper(s.Method); m != "" && m != http.MethodGet && m != http.MethodHead {
		return core.NewConfigError(fmt.Sprintf("scenario %s: method %s would mutate server state", s.Name, s.Method), nil)
	}
	return nil
}

func (s Scenario) method() string {
	if s.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(s.Method)
}

// Result is the outcome of running one scenario
type Result struct {
	Scenario   string
	Method     string
	Path       string
	StatusCode int
	Duration   time.Duration
	// Failures holds every expectation that did not hold.
	Failures []error
	// Err is set when the request itself failed; no expectations were evaluated.
	Err error
}

// Passed reports whether the request succeeded and every expectation held.
func (r Result) Passed() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// Errors returns the request error followed by the expectation failures.
func (r Result) Errors() []error {
	errs := make([]error, 0, len(r.Failures)+1)
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	return append(errs, r.Failures...)
}

// Error joins all failures into one error, or returns nil when the scenario passed.
func (r Result) Error() error {
	return errors.Join(r.Errors()...)
}
