package contract

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Report collects the results of one run
type Report struct {
	Results []Result
	Started time.Time
	Elapsed time.Duration
}

// Passed reports whether every scenario passed.
func (r *Report) Passed() bool {
	return len(r.Failed()) == 0
}

// Failed returns the results that did not pass, in run order.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Add appends extra results, such as idempotence checks, to the report.
func (r *Report) Add(results ...Result) {
	r.Results = append(r.Results, results...)
}

// Summary returns a one-line tally.
func (r *Report) Summary() string {
	failed := len(r.Failed())
	return fmt.Sprintf("%d scenarios, %d passed, %d failed", len(r.Results), len(r.Results)-failed, failed)
}

// WriteText writes a human-readable report: one line per scenario, with each
// failure indented below its scenario.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, res := range r.Results {
		verdict := "PASS"
		if !res.Passed() {
			verdict = "FAIL"
		}
		status := "-"
		if res.StatusCode != 0 {
			status = fmt.Sprintf("%d", res.StatusCode)
		}
		fmt.Fprintf(&b, "%s  %-28s %s %s -> %s (%s)\n",
			verdict, res.Scenario, res.Method, res.Path, status, res.Duration.Round(time.Millisecond))
		for _, err := range res.Errors() {
			fmt.Fprintf(&b, "      - %v\n", err)
		}
	}
	fmt.Fprintf(&b, "\n%s in %s\n", r.Summary(), r.Elapsed.Round(time.Millisecond))

	_, err := io.WriteString(w, b.String())
	return err
}
