package lights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// SettingsService defines the settings round trips the controller relies on.
// This interface is implemented by *Client and can be swapped in tests.
type SettingsService interface {
	FetchSettings(ctx context.Context) (Settings, error)
	WriteSettings(ctx context.Context, update Update) error
}

// Ensure Client implements SettingsService at compile time.
var _ SettingsService = (*Client)(nil)

// Client talks to the device's /settings resource. It holds no cached
// state: every call is a fresh round trip.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	form      bool
	limiter   *rate.Limiter
	timeout   time.Duration
	ownHTTP   bool
}

const (
	defaultOrigin    = "localhost:8000"
	defaultUserAgent = "lumen/0.1"
	requestTimeout   = 5 * time.Second
	settingsPath     = "/settings"
	maxBodyBytes     = 1 << 20

	requestIDHeader = "X-Request-ID"
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
			c.ownHTTP = false
		}
	}
}

// WithTimeout sets the per-request timeout. Timeouts surface as NetworkError.
// A client passed to WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithFormEncoding posts updates as application/x-www-form-urlencoded
// instead of JSON.
func WithFormEncoding() Option {
	return func(c *Client) { c.form = true }
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient builds a Client for the device at origin (host:port or URL).
func NewClient(origin string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(origin)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		ownHTTP:   true,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.http.Timeout != c.timeout {
		if !c.ownHTTP {
			hc := *c.http
			c.http = &hc
		}
		c.http.Timeout = c.timeout
	}
	return c, nil
}

// BaseURL returns the normalized device origin.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchSettings retrieves the current settings snapshot.
func (c *Client) FetchSettings(ctx context.Context) (Settings, error) {
	if c == nil {
		return Settings{}, fmt.Errorf("client is nil")
	}
	body, err := c.do(ctx, http.MethodGet, nil, "")
	if err != nil {
		return Settings{}, err
	}
	settings, err := decodeSettings(body)
	if err != nil {
		return Settings{}, &ParseError{Err: err}
	}
	return settings, nil
}

// WriteSettings posts a partial update. The response body is ignored; only
// the status code signals success.
func (c *Client) WriteSettings(ctx context.Context, update Update) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if err := update.Validate(); err != nil {
		return fmt.Errorf("invalid update: %w", err)
	}

	var (
		payload     []byte
		contentType string
	)
	if c.form {
		payload = []byte(update.Form().Encode())
		contentType = "application/x-www-form-urlencoded"
	} else {
		encoded, err := json.Marshal(update)
		if err != nil {
			return fmt.Errorf("encode update: %w", err)
		}
		payload = encoded
		contentType = "application/json"
	}
	_, err := c.do(ctx, http.MethodPost, payload, contentType)
	return err
}

func (c *Client) do(ctx context.Context, method string, payload []byte, contentType string) ([]byte, error) {
	op := method + " " + settingsPath
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Op: op, Err: err}
		}
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: settingsPath})
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logger := log.With().Str("op", op).Str("request_id", requestID).Logger()
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("settings request failed")
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("settings request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn().Int("status", resp.StatusCode).Msg("settings request rejected")
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}
	if readErr != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", readErr)}
	}
	return data, nil
}

func parseBaseURL(origin string) (*url.URL, error) {
	trimmed := strings.TrimSpace(origin)
	if trimmed == "" {
		trimmed = defaultOrigin
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse settings url %q: %w", origin, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse settings url %q: missing host", origin)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
