//go:build contract

package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"apicontract/internal/apiclient"
)

const replayBaseURL = "https://replay.local"

type replayRoute struct {
	statusCode  int
	contentType string
	body        []byte
}

type replayTransport struct {
	t      *testing.T
	routes map[string]replayRoute
}

func replayKey(method, requestURI string) string {
	return method + " " + requestURI
}

func (rt *replayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.t.Helper()

	key := replayKey(req.Method, req.URL.RequestURI())
	route, ok := rt.routes[key]
	if !ok {
		rt.t.Errorf("missing replay route: %s", key)
		notFoundBody := []byte(fmt.Sprintf(`{"error":"missing replay route: %s"}`, key))
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Status:     "502 Bad Gateway",
			Header: http.Header{
				"Content-Type": []string{"application/json"},
			},
			Body:    io.NopCloser(bytes.NewReader(notFoundBody)),
			Request: req,
		}, nil
	}

	statusCode := route.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	contentType := route.contentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}

	return &http.Response{
		StatusCode: statusCode,
		Status:     fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		Header: http.Header{
			"Content-Type": []string{contentType},
		},
		Body:    io.NopCloser(bytes.NewReader(route.body)),
		Request: req,
	}, nil
}

func newReplayClient(t *testing.T, routes map[string]replayRoute) *apiclient.Client {
	t.Helper()

	client, err := apiclient.New(replayBaseURL, &http.Client{
		Transport: &replayTransport{
			t:      t,
			routes: routes,
		},
	}, discardLogger())
	require.NoError(t, err)
	return client
}

// recordedRoute loads a recording and its sidecar. Recordings are stored
// pretty-printed; the body is compacted back to the service's wire form.
func recordedRoute(t *testing.T, fixture string) (string, replayRoute) {
	t.Helper()

	meta := loadGoldenFile[recordingMeta](t, metaPathForFixture(fixture))
	body := loadGoldenFileRaw(t, fixture)

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err == nil {
		body = compact.Bytes()
	}

	return replayKey(http.MethodGet, meta.Path), replayRoute{
		statusCode:  meta.StatusCode,
		contentType: meta.ContentType,
		body:        body,
	}
}

func recordedRoutes(t *testing.T, fixtures ...string) map[string]replayRoute {
	t.Helper()

	routes := make(map[string]replayRoute, len(fixtures))
	for _, fixture := range fixtures {
		key, route := recordedRoute(t, fixture)
		routes[key] = route
	}
	return routes
}

func metaPathForFixture(fixture string) string {
	return strings.TrimSuffix(fixture, filepath.Ext(fixture)) + ".meta.json"
}
