// Package gateway is the HTTP client for the prompt-manager backend. It
// attaches the cached session marker to outgoing requests and inspects
// every response for authentication failure signals, invalidating the
// session and navigating to the login surface when one is detected.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/net/publicsuffix"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
	apperrors "github.com/college-predictor/prompt-manager-fe/internal/errors"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

// SessionHeader carries the cached session marker on every
// authenticated request.
const SessionHeader = "X-Session-Token"

// loginSurfacePath marks a 404 as a login redirect when the resolved
// URL landed there after redirect following.
const loginSurfacePath = "/login"

// errorMessageExpr extracts a human-readable message from the varying
// backend error envelopes ({"message": ...} or {"data": {"message": ...}}).
const errorMessageExpr = "message || data.message"

// Options groups dependencies for the gateway client.
type Options struct {
	BaseURL    string
	Store      ports.SessionStore
	Navigator  ports.Navigator
	HTTPClient *http.Client // Optional; a cookie-jar client is built when nil
	Logger     *slog.Logger // Optional, defaults to slog.Default
	Timeout    time.Duration
}

// Client performs JSON requests against the backend, with credentials
// included (cookie jar) and session-failure classification.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	store     ports.SessionStore
	navigator ports.Navigator
	logger    *slog.Logger

	// navigated gates the hard navigation to the login surface so a
	// burst of concurrent failing requests triggers it exactly once.
	// Re-armed by ResetNavigation after a successful re-login.
	navigated atomic.Bool
}

// New constructs a gateway client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL scheme: %q", base.Scheme)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if opts.Navigator == nil {
		return nil, fmt.Errorf("navigator is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("build cookie jar: %w", jarErr)
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		store:     opts.Store,
		navigator: opts.Navigator,
		logger:    logger,
	}, nil
}

// Do sends one JSON request and returns the raw response body for 2xx
// responses. Non-2xx outcomes are classified per the session contract:
// auth failures clear the session and navigate to login, other HTTP
// errors surface as domain fetch failures, and transport errors surface
// as connectivity failures without touching the session.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		payload = bytes.NewReader(data)
	}

	target := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	// Absence of a session marker is not an error: unauthenticated
	// calls are legal, the login exchange itself being one.
	marker, present, getErr := c.store.Get(ctx, domainauth.KeyToken)
	if getErr != nil {
		c.logger.Warn("read session marker failed, sending unauthenticated", "error", getErr)
	} else if present && marker != "" {
		req.Header.Set(SessionHeader, marker)
	}

	c.logger.Debug("backend request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		// No response received: no authentication signal, session untouched.
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConnectivity,
			"network error - please check your connection")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("close response body failed", "error", closeErr, "request_id", requestID)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConnectivity, "read response body")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	if isAuthFailure(resp) {
		c.invalidateSession(ctx)
		return nil, apperrors.AuthRequiredf("authentication required (status %d)", resp.StatusCode)
	}

	msg := extractErrorMessage(respBody)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return nil, apperrors.DomainFetch(msg)
}

// ResetNavigation re-arms the login navigation gate. Called after a
// successful exchange so a later session loss can navigate again.
func (c *Client) ResetNavigation() {
	c.navigated.Store(false)
}

// invalidateSession clears the cache synchronously and performs the
// hard navigation to the login surface. A stale session marker must
// never be retried silently. The clear proceeds even when the consumer
// that issued the request is already gone: this is process-wide state.
func (c *Client) invalidateSession(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("clear session after auth failure", "error", err)
	}
	if c.navigated.CompareAndSwap(false, true) {
		c.navigator.ToLogin(ctx)
	}
}

// isAuthFailure classifies a response as an authentication failure:
// explicit 401/403, or a 404 whose resolved URL shows the redirect
// chain landed on the login surface.
func isAuthFailure(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusNotFound:
		return resp.Request != nil && resp.Request.URL != nil &&
			strings.HasSuffix(resp.Request.URL.Path, loginSurfacePath)
	default:
		return false
	}
}

// extractErrorMessage pulls a message out of an error body, tolerating
// the backend's varying envelopes. Returns "" when none is found.
func extractErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	result, err := jmespath.Search(errorMessageExpr, doc)
	if err != nil {
		return ""
	}
	msg, ok := result.(string)
	if !ok {
		return ""
	}
	return msg
}
