// Package config provides configuration management for the contract checker.
//
// Values are layered: built-in defaults, then an optional config.yaml, then
// environment variables (a .env file is loaded into the environment first).
package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"apicontract/internal/contract"
	"apicontract/internal/httpclient"
)

// DefaultBaseURL is the public posts/comments service.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// Config holds the application configuration
type Config struct {
	API      APIConfig         `mapstructure:"api"`
	Fixtures contract.Fixtures `mapstructure:"fixtures"`
	Logging  LogConfig         `mapstructure:"logging"`
	Stub     StubConfig        `mapstructure:"stub"`
	Catalog  CatalogConfig     `mapstructure:"catalog"`
}

// APIConfig describes the service under test
type APIConfig struct {
	BaseURL               string        `mapstructure:"base_url"`
	Timeout               time.Duration `mapstructure:"timeout"`
	ResponseHeaderTimeout time.Duration `mapstructure:"response_header_timeout"`
}

// HTTPClient returns the client every binary uses to reach the service.
func (a APIConfig) HTTPClient() *http.Client {
	return httpclient.New(httpclient.Options{
		Timeout:               a.Timeout,
		ResponseHeaderTimeout: a.ResponseHeaderTimeout,
	})
}

// LogConfig holds slog handler options
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// StubConfig holds options for the in-repo stub service
type StubConfig struct {
	Addr            string `mapstructure:"addr"`
	Posts           int    `mapstructure:"posts"`
	CommentsPerPost int    `mapstructure:"comments_per_post"`
	MetricsEnabled  bool   `mapstructure:"metrics_enabled"`
}

// CatalogConfig points at an optional YAML scenario catalog. Empty means the
// built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	return load(".", "./config")
}

func load(paths ...string) (*Config, error) {
	// Optional; a missing .env is not an error
	_ = godotenv.Load()

	cfg := buildDefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if err := v.Unmarshal(cfg, decodeHooks(), snakeCaseMatchName()); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", v.ConfigFileUsed(), err)
		}
		expandStrings(cfg)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:               DefaultBaseURL,
			Timeout:               httpclient.DefaultTimeout,
			ResponseHeaderTimeout: httpclient.DefaultResponseHeaderTimeout,
		},
		Fixtures: contract.DefaultFixtures(),
		Logging: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Stub: StubConfig{
			Addr:            ":8080",
			Posts:           100,
			CommentsPerPost: 5,
			MetricsEnabled:  true,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.ResponseHeaderTimeout <= 0 {
		return fmt.Errorf("api.response_header_timeout must be positive, got %s", c.API.ResponseHeaderTimeout)
	}
	if err := c.Fixtures.Validate(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Stub.Posts < 0 || c.Stub.CommentsPerPost < 0 {
		return fmt.Errorf("stub.posts and stub.comments_per_post must not be negative")
	}
	return nil
}

func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
}

// secondsToDurationHook lets YAML give timeouts as plain integers in seconds.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeFor[time.Duration]() {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Int, reflect.Int64, reflect.Int32:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		default:
			return data, nil
		}
	}
}

// snakeCaseMatchName matches snake_case keys to Go field names, so
// comments_per_post finds CommentsPerPost even without a tag.
func snakeCaseMatchName() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.MatchName = func(mapKey, fieldName string) bool {
			if strings.HasPrefix(mapKey, "_") || strings.HasSuffix(mapKey, "_") || strings.Contains(mapKey, "__") {
				return false
			}
			return strings.EqualFold(strings.ReplaceAll(mapKey, "_", ""), strings.ReplaceAll(fieldName, "_", ""))
		}
	}
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default}. Unset variables without a
// default are left as written.
func expandString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		if val := os.Getenv(parts[1]); val != "" {
			return val
		}
		if parts[2] != "" {
			return parts[3]
		}
		return match
	})
}

func expandStrings(cfg *Config) {
	cfg.API.BaseURL = expandString(cfg.API.BaseURL)
	cfg.Fixtures.InvalidPath = expandString(cfg.Fixtures.InvalidPath)
	cfg.Logging.Format = expandString(cfg.Logging.Format)
	cfg.Logging.Level = expandString(cfg.Logging.Level)
	cfg.Stub.Addr = expandString(cfg.Stub.Addr)
	cfg.Catalog.Path = expandString(cfg.Catalog.Path)
}

func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = b
		return nil
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
		return nil
	}

	setString("API_BASE_URL", &cfg.API.BaseURL)
	setString("LOG_FORMAT", &cfg.Logging.Format)
	setString("LOG_LEVEL", &cfg.Logging.Level)
	setString("FIXTURE_INVALID_PATH", &cfg.Fixtures.InvalidPath)
	setString("STUB_ADDR", &cfg.Stub.Addr)
	setString("CATALOG_PATH", &cfg.Catalog.Path)

	return errors.Join(
		setDuration("HTTP_TIMEOUT", &cfg.API.Timeout),
		setDuration("HTTP_RESPONSE_HEADER_TIMEOUT", &cfg.API.ResponseHeaderTimeout),
		setInt("FIXTURE_VALID_POST_ID", &cfg.Fixtures.ValidPostID),
		setInt("FIXTURE_VALID_POST_USER_ID", &cfg.Fixtures.ValidPostUserID),
		setInt("FIXTURE_INVALID_POST_ID", &cfg.Fixtures.InvalidPostID),
		setInt("FIXTURE_EXPECTED_POST_COUNT", &cfg.Fixtures.ExpectedPostCount),
		setInt("STUB_POSTS", &cfg.Stub.Posts),
		setInt("STUB_COMMENTS_PER_POST", &cfg.Stub.CommentsPerPost),
		setBool("STUB_METRICS_ENABLED", &cfg.Stub.MetricsEnabled),
	)
}

// parseDuration accepts integer seconds or a Go duration string.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(strings.TrimFunc(s, unicode.IsSpace))
}
