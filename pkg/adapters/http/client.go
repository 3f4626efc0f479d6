package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/ports"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	maxResponseBody = 1 << 20
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the remote scoring service.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger

	// timeout, when set, overrides the timeout of http after all options ran.
	timeout *time.Duration
}

var _ ports.PromptService = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying client. The client is copied, so
// WithTimeout never changes the caller's value. Nil keeps the default.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c == nil {
			return
		}
		copied := *c
		cl.http = &copied
	}
}

// WithTimeout sets the per-request timeout, whatever the option order.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.timeout = &d
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		c.http.Timeout = *c.timeout
	}
	return c, nil
}

// ListPrompts calls GET /api/prompts.
func (c *Client) ListPrompts(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := c.do(ctx, http.MethodGet, "/api/prompts", nil, &slugs); err != nil {
		return nil, err
	}
	return slugs, nil
}

// GetPrompt calls GET /api/prompt/{slug}.
func (c *Client) GetPrompt(ctx context.Context, slug string) (domain.Prompt, error) {
	var p domain.Prompt
	if err := c.do(ctx, http.MethodGet, "/api/prompt/"+url.PathEscape(slug), nil, &p); err != nil {
		return domain.Prompt{}, notFound(err)
	}
	return p, nil
}

// Submit calls POST /api/submit/{slug}.
func (c *Client) Submit(ctx context.Context, slug string, sub domain.Submission) (domain.Score, error) {
	var score domain.Score
	if err := c.do(ctx, http.MethodPost, "/api/submit/"+url.PathEscape(slug), sub, &score); err != nil {
		return domain.Score{}, notFound(err)
	}
	score.Stars = domain.ClampStars(score.Stars)
	return score, nil
}

func notFound(err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %w", domain.ErrPromptNotFound, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.base.String() + path
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api call", "method", method, "url", target, "code", resp.StatusCode, "elapsed", time.Since(start))

	limited := io.LimitReader(resp.Body, maxResponseBody)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(limited)
		return &StatusError{Method: method, URL: target, Code: resp.StatusCode, Body: errorMessage(msg)}
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, target, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} bodies and falls back to the raw text.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	return strings.TrimSpace(string(body))
}
