package planner

import (
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is where the planning service listens by default.
	DefaultBaseURL = "http://127.0.0.1:8000"
	// DefaultTimeout bounds a single planning round trip.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxResponseBytes limits response bodies to 1 MB.
	DefaultMaxResponseBytes int64 = 1 << 20
)

// Settings captures how the client reaches the planner.
type Settings struct {
	BaseURL          string
	Timeout          time.Duration
	MaxResponseBytes int64
}

// DefaultSettings returns settings pointing at a local planner.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:          DefaultBaseURL,
		Timeout:          DefaultTimeout,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// ApplyEnvOverrides lets WHYBOT_PLANNER_URL and WHYBOT_PLANNER_TIMEOUT win
// over file configuration.
func (s *Settings) ApplyEnvOverrides() {
	if s == nil {
		return
	}
	if base := strings.TrimSpace(os.Getenv("WHYBOT_PLANNER_URL")); base != "" {
		s.BaseURL = base
	}
	if raw := strings.TrimSpace(os.Getenv("WHYBOT_PLANNER_TIMEOUT")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			s.Timeout = d
		}
	}
}

// Normalize fills zero values with defaults and trims the base URL.
func (s *Settings) Normalize() {
	if s == nil {
		return
	}
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.MaxResponseBytes <= 0 {
		s.MaxResponseBytes = DefaultMaxResponseBytes
	}
}

// Validate checks that the base URL is an absolute http(s) URL.
func (s Settings) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errInvalidScheme(u.Scheme)
	}
	if u.Host == "" {
		return errMissingHost
	}
	return nil
}

// Endpoint joins the base URL and a path.
func (s Settings) Endpoint(path string) string {
	return s.BaseURL + "/" + strings.TrimLeft(path, "/")
}
