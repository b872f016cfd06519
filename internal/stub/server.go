// Package stub serves a local copy of the posts/comments API contract so the
// contract suite can run without the external service.
package stub

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Config holds stub server options
type Config struct {
	MetricsEnabled  bool   // Whether to expose the Prometheus metrics endpoint
	MetricsEndpoint string // HTTP path for metrics endpoint (default: /metrics)
	Logger          *slog.Logger
}

// Server wraps the Echo server
type Server struct {
	echo     *echo.Echo
	data     *Dataset
	requests *prometheus.CounterVec
	registry *prometheus.Registry
	logger   *slog.Logger
}

// New creates a stub server over data. A nil cfg disables metrics.
func New(data *Dataset, cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		data:     data,
		registry: prometheus.NewRegistry(),
		logger:   logger.With("component", "stub"),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apicontract",
			Subsystem: "stub",
			Name:      "requests_total",
			Help:      "Requests served by the stub API, by route and status code.",
		}, []string{"route", "code"}),
	}
	s.registry.MustRegister(s.requests, collectors.NewGoCollector())

	metricsPath := "/metrics"
	if cfg.MetricsEndpoint != "" {
		metricsPath = path.Clean(cfg.MetricsEndpoint)
	}

	e.HTTPErrorHandler = s.handleError

	// Global middleware stack (order matters)
	e.Use(middleware.Recover())
	e.Use(s.countRequests)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool { return c.Path() == metricsPath },
	}))

	e.GET("/health", s.health)
	if cfg.MetricsEnabled {
		e.GET(metricsPath, echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	e.GET("/posts", s.listPosts)
	e.GET("/posts/:id", s.getPost)
	e.GET("/posts/:id/comments", s.listComments)

	return s
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	s.logger.Info("stub server listening", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Registry exposes the stub's metrics registry.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) health(c echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listPosts(c echo.Context) error {
	userID := 0
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return writeJSON(c, http.StatusOK, []any{})
		}
		userID = id
	}
	return writeJSON(c, http.StatusOK, s.data.Posts(userID))
}

// getPost answers 404 with an empty object for ids that are unknown or not numeric.
func (s *Server) getPost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	post, ok := s.data.Post(id)
	if !ok {
		return echo.ErrNotFound
	}
	return writeJSON(c, http.StatusOK, post)
}

// listComments answers 200 with an empty array when the post does not exist.
func (s *Server) listComments(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return writeJSON(c, http.StatusOK, []any{})
	}
	return writeJSON(c, http.StatusOK, s.data.Comments(id))
}

// handleError renders every error as a JSON body. Not-found errors use an empty object.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	var writeErr error
	if code == http.StatusNotFound {
		writeErr = c.Blob(code, contentTypeJSON, []byte("{}"))
	} else {
		s.logger.Error("request failed", "error", err, "path", c.Request().URL.Path)
		writeErr = writeJSON(c, code, map[string]string{"error": http.StatusText(code)})
	}
	if writeErr != nil {
		s.logger.Error("failed to write error response", "error", writeErr)
	}
}

// countRequests records one sample per request once the response status is known.
func (s *Server) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := next(c); err != nil {
			c.Error(err)
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.requests.WithLabelValues(route, strconv.Itoa(c.Response().Status)).Inc()
		return nil
	}
}

// writeJSON writes v without the trailing newline echo's encoder adds, so
// bodies such as {} and [] are byte-exact.
func writeJSON(c echo.Context, code int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(code, contentTypeJSON, b)
}
