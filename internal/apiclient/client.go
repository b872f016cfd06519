// Package apiclient provides a single-attempt HTTP client bound to one API base URL.
// It performs no retries and no caching: each call is exactly one request.
package apiclient

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"apicontract/internal/core"
	"apicontract/internal/httpclient"
)

// RequestIDHeader carries a per-request id so server logs can be correlated with the report.
const RequestIDHeader = "X-Request-Id"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 16 << 20

// Request represents an HTTP request to be made
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
}

// Response represents a fully read HTTP response
type Response struct {
	StatusCode  int
	ContentType string
	Header      http.Header
	Body        []byte
	RequestID   string
	Duration    time.Duration
}

// jsonMediaTypes are the media types accepted as JSON besides the +json suffix.
var jsonMediaTypes = map[string]bool{
	"application/json":       true,
	"application/javascript": true,
	"text/javascript":        true,
	"text/json":              true,
}

// IsJSON reports whether the response declares a JSON media type.
func (r *Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return false
	}
	return jsonMediaTypes[mediaType] || strings.HasSuffix(mediaType, "+json")
}

// JSON parses the body lazily with gjson. Invalid JSON yields a non-existent result.
func (r *Response) JSON() gjson.Result {
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}
	}
	return gjson.ParseBytes(r.Body)
}

// ValidJSON reports whether the body is well-formed JSON.
func (r *Response) ValidJSON() bool {
	return gjson.ValidBytes(r.Body)
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Client issues requests against a fixed base URL
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New creates a client for baseURL. A nil httpClient uses the package default
// and a nil logger uses slog.Default().
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, core.NewConfigError("invalid base URL "+baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, core.NewConfigError(fmt.Sprintf("base URL %q must be an absolute http(s) URL", baseURL), nil)
	}
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.Options{})
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With("component", "apiclient"),
	}, nil
}

// BaseURL returns the base URL requests are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a single GET for path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Do executes req once and reads the whole body.
// Any status code is a successful call; only transport failures return an error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	requestID := httpReq.Header.Get(RequestIDHeader)

	c.logger.Debug("sending request",
		"method", httpReq.Method,
		"url", httpReq.URL.String(),
		"request_id", requestID,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewTransportError(fmt.Sprintf("%s %s failed: %v", httpReq.Method, req.Path, err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp)
	if err != nil {
		return nil, core.NewTransportError(fmt.Sprintf("%s %s: failed to read body: %v", httpReq.Method, req.Path, err), err)
	}
	elapsed := time.Since(start)

	c.logger.Debug("received response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", elapsed,
		"request_id", requestID,
	)

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Body:        body,
		RequestID:   requestID,
		Duration:    elapsed,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, core.NewConfigError("failed to create request for "+path, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Encoding", "br, gzip")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// readBody reads the response body, undoing any content encoding. An empty
// body is returned as is whatever its declared encoding, so bodyless 404s and
// HEAD responses from compressing servers still yield a status.
// Setting Accept-Encoding by hand disables net/http's transparent gzip handling.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return raw, nil
	}

	var r io.Reader
	switch enc := contentEncoding(resp.Header); enc {
	case "", "identity":
		return raw, nil
	case "br":
		r = brotli.NewReader(bytes.NewReader(raw))
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case "deflate":
		fl := flate.NewReader(bytes.NewReader(raw))
		defer func() { _ = fl.Close() }()
		r = fl
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
	return readLimited(r)
}

// readLimited reads at most maxBodySize bytes and fails on anything longer
// rather than handing back a truncated body.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", maxBodySize)
	}
	return data, nil
}

// contentEncoding returns the first coding of a Content-Encoding list, lower-cased.
func contentEncoding(h http.Header) string {
	enc, _, _ := strings.Cut(h.Get("Content-Encoding"), ",")
	return strings.ToLower(strings.TrimSpace(enc))
}
