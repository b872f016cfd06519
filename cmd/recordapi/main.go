// Package main provides a CLI tool to record real API responses for contract tests.
// Usage:
//
//	go run ./cmd/recordapi \
//	  -endpoint=post \
//	  -output=tests/contract/testdata/posts/post_1.json
//
// The base URL comes from API_BASE_URL (default: the public service). Each
// recording gets a sidecar <output>.meta.json holding status and content type.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"apicontract/config"
	"apicontract/internal/apiclient"
	"apicontract/internal/core"
	"apicontract/internal/logging"
)

// Meta is the sidecar written next to each recording
type Meta struct {
	Endpoint    string    `json:"endpoint"`
	Path        string    `json:"path"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// endpointPaths maps endpoint names to request paths for the configured fixtures
func endpointPaths(cfg *config.Config) map[string]string {
	f := cfg.Fixtures
	return map[string]string{
		"post":             fmt.Sprintf(core.PostPathFmt, f.ValidPostID),
		"posts":            core.PostsPath,
		"post_invalid":     fmt.Sprintf(core.PostPathFmt, f.InvalidPostID),
		"invalid":          f.InvalidPath,
		"comments":         fmt.Sprintf(core.CommentsPathFmt, f.ValidPostID),
		"comments_invalid": fmt.Sprintf(core.CommentsPathFmt, f.InvalidPostID),
	}
}

func main() {
	endpoint := flag.String("endpoint", "post", "Endpoint to record (post, posts, post_invalid, invalid, comments, comments_invalid)")
	output := flag.String("output", "", "Output file path (required)")
	flag.Parse()

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: -output flag is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	paths := endpointPaths(cfg)
	path, ok := paths[*endpoint]
	if !ok {
		names := make([]string, 0, len(paths))
		for name := range paths {
			names = append(names, name)
		}
		slices.Sort(names)
		fmt.Fprintf(os.Stderr, "Error: unknown endpoint %q (want one of %s)\n", *endpoint, strings.Join(names, ", "))
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{Format: cfg.Logging.Format, Level: cfg.Logging.Level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		os.Exit(1)
	}

	client, err := apiclient.New(cfg.API.BaseURL, cfg.API.HTTPClient(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating client: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sending request to GET %s%s...\n", client.BaseURL(), path)

	resp, err := client.Get(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Response status: %d (%s)\n", resp.StatusCode, resp.ContentType)

	if err := writeOutput(*output, prettyBody(resp.Body)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	meta := Meta{
		Endpoint:    *endpoint,
		Path:        path,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		RecordedAt:  time.Now().UTC(),
	}
	if err := writeMeta(*output, meta); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing metadata: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Response saved to %s\n", *output)
}

// prettyBody indents JSON bodies and returns anything else unchanged.
func prettyBody(body []byte) []byte {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return body
	}
	pretty.WriteByte('\n')
	return pretty.Bytes()
}

// metaPath returns the sidecar path for a recording.
func metaPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".meta.json"
}

func writeMeta(output string, meta Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return writeOutput(metaPath(output), append(data, '\n'))
}

// writeOutput writes data to the output file, creating directories as needed.
func writeOutput(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
