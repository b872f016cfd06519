//go:build contract

package contract

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testdataDir is the path to the testdata directory.
const testdataDir = "testdata"

// loadGoldenFile reads a golden file from testdata and unmarshals it.
func loadGoldenFile[T any](t *testing.T, path string) T {
	t.Helper()

	fullPath := filepath.Join(testdataDir, path)
	data, err := os.ReadFile(fullPath)
	require.NoError(t, err, "failed to read golden file %s", fullPath)

	var result T
	err = json.Unmarshal(data, &result)
	require.NoError(t, err, "failed to unmarshal golden file %s", fullPath)

	return result
}

// loadGoldenFileRaw reads a golden file from testdata as raw bytes.
func loadGoldenFileRaw(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join(testdataDir, path)
	data, err := os.ReadFile(fullPath)
	require.NoError(t, err, "failed to read golden file %s", fullPath)

	return data
}

// recordingMeta mirrors the sidecar written by cmd/recordapi.
type recordingMeta struct {
	Endpoint    string `json:"endpoint"`
	Path        string `json:"path"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
