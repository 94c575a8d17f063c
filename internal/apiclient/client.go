// Package apiclient is the HTTP client for the catalog API. Every request
// goes through Transport, which keeps the session's credentials current.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	apperrors "github.com/target/catalog-admin/internal/errors"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "catalog-admin"
	maxErrorBody     = 1 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Store     SessionStore      // required
	Base      http.RoundTripper // optional; defaults to http.DefaultTransport
	Logger    *slog.Logger
}

// Client talks to the catalog API on behalf of the current session.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger

	Auth     *AuthAPI
	Products *ProductsAPI
	Users    *UsersAPI
}

// New builds a Client whose transport refreshes through the client's own auth endpoint.
func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "apiclient")

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &Transport{
		Base:           opts.Base,
		Store:          opts.Store,
		RefreshTimeout: timeout,
		Logger:         logger,
	}

	c := &Client{
		baseURL:   base,
		http:      &http.Client{Transport: transport, Timeout: timeout, Jar: jar},
		userAgent: fallbackString(strings.TrimSpace(opts.UserAgent), defaultUserAgent),
		logger:    logger,
	}
	c.Auth = &AuthAPI{c: c}
	c.Products = &ProductsAPI{c: c}
	c.Users = &UsersAPI{c: c}
	transport.Refresh = c.Auth.refreshTokens

	return c, nil
}

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// call describes one API request.
type call struct {
	method string
	path   []string
	query  url.Values
	in     any
	out    any
}

// do sends the call and decodes a JSON response into out.
// Non-2xx responses and transport failures are returned as *apperrors.AppError.
func (c *Client) do(ctx context.Context, cl call) error {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		mapped := apperrors.MapTransportError(err)
		c.logger.DebugContext(ctx, "api request failed",
			"method", cl.method,
			"path", req.URL.Path,
			"request_id", req.Header.Get(HeaderRequestID),
			"error", err,
		)
		return mapped
	}
	defer drainClose(resp.Body)

	c.logger.DebugContext(ctx, "api request",
		"method", cl.method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", req.Header.Get(HeaderRequestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.FromResponse(resp.StatusCode, body)
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if text, ok := cl.out.(*string); ok {
		return decodeText(resp.Body, text)
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Unexpected response from the catalog API.")
	}
	return nil
}

// pathSegment escapes caller input used as one path element, so "/" and
// dot segments cannot change the route.
func pathSegment(s string) string {
	switch s {
	case ".", "..":
		return strings.Repeat("%2E", len(s))
	}
	return url.PathEscape(s)
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.baseURL.JoinPath(cl.path...)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.in != nil {
		raw, err := json.Marshal(cl.in)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decodeText accepts a JSON string or a plain-text body.
func decodeText(r io.Reader, out *string) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeNetwork, "Could not read the catalog API response.")
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, out); err == nil {
			return nil
		}
	}
	*out = string(trimmed)
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api base url %q has no host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
