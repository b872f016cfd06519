// Package httpclient builds the *http.Client used to reach the service under test.
// Timeouts come from the caller (see config.APIConfig); this package reads no
// environment of its own.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Defaults applied to zero-valued Options
const (
	DefaultTimeout               = 30 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
)

// Options are the tunables a contract run exposes
type Options struct {
	// Timeout bounds one whole request including the body read
	Timeout time.Duration
	// ResponseHeaderTimeout bounds the wait for status line and headers
	ResponseHeaderTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ResponseHeaderTimeout <= 0 {
		o.ResponseHeaderTimeout = DefaultResponseHeaderTimeout
	}
	return o
}

// New returns a client for sequential GETs against a single host.
// Transparent compression is off: callers set Accept-Encoding and decode
// bodies themselves.
func New(opts Options) *http.Client {
	opts = opts.withDefaults()

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
			DisableCompression:    true,
			ForceAttemptHTTP2:     true,
		},
	}
}
