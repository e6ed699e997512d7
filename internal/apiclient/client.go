// Package apiclient is the thin HTTP layer every backend call goes through.
// It attaches the bearer token and standard headers, keeps a cookie jar so
// session cookies travel with each request, and turns non-2xx answers into
// *StatusError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"meal-planner/internal/logging"
)

// ErrSessionExpired is returned, without touching the network, when the
// bearer token carries an exp claim in the past.
var ErrSessionExpired = errors.New("session expired: sign in again")

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Message    string
	RedirectTo string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// Client talks JSON to the meal-planner backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a Client for baseURL. An empty token sends no Authorization header.
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

// WithToken returns a copy of the client that authenticates with token.
// The cookie jar is shared.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes the JSON body into out (when non-nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do sends a request and decodes a 2xx JSON body into out.
// A cancelled ctx aborts the in-flight request; the returned error then wraps ctx.Err().
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	if err := c.checkToken(); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s aborted: %w", method, path, ctxErr)
		}
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s aborted: %w", method, path, ctxErr)
		}
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", c.now().Sub(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkToken rejects tokens whose exp claim has passed. Tokens that are not
// JWTs are passed through untouched; the server is the authority on them.
func (c *Client) checkToken() error {
	if c.token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if c.now().After(exp.Time) {
		return ErrSessionExpired
	}
	return nil
}

func newStatusError(status int, data []byte) *StatusError {
	se := &StatusError{StatusCode: status, Body: data}

	var payload struct {
		Error      string `json:"error"`
		Message    string `json:"message"`
		RedirectTo string `json:"redirect_to"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		se.Message = payload.Error
		if se.Message == "" {
			se.Message = payload.Message
		}
		se.RedirectTo = payload.RedirectTo
	}
	if se.Message == "" {
		se.Message = http.StatusText(status)
	}
	return se
}
