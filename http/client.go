package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxAttempts is the default number of attempts per request,
// counting the first.
const DefaultMaxAttempts = 3

// DefaultRetryWait is the default initial wait between retries.
const DefaultRetryWait = 1 * time.Second

// DefaultMaxRetryWait caps the backoff between retries.
const DefaultMaxRetryWait = 30 * time.Second

// RequestIDHeader carries the per-request id generated by the client.
const RequestIDHeader = "X-Request-Id"

// Observer is called once per HTTP attempt. status is 0 when the request
// failed before a response arrived.
type Observer func(op string, status int, elapsed time.Duration)

// Client provides JSON request handling with retries for integration clients.
type Client struct {
	client       *http.Client
	baseURL      string
	serviceName  string
	maxAttempts  int
	retryWait    time.Duration
	maxRetryWait time.Duration
	jitter       bool
	observer     Observer
	logger       *slog.Logger

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	// Client performs the requests. Authentication is expected to be handled
	// by its transport (e.g. an oauth2 client).
	Client *http.Client

	BaseURL     string
	ServiceName string

	// MaxAttempts is the total number of attempts per request, counting the
	// first. 1 disables retrying; 0 means DefaultMaxAttempts.
	MaxAttempts int

	RetryWait    time.Duration
	MaxRetryWait time.Duration

	// Jitter randomizes retry waits by ±30%.
	Jitter bool

	Observer Observer
	Logger   *slog.Logger
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:       cfg.Client,
		baseURL:      cfg.BaseURL,
		serviceName:  cfg.ServiceName,
		maxAttempts:  cfg.MaxAttempts,
		retryWait:    cfg.RetryWait,
		maxRetryWait: cfg.MaxRetryWait,
		jitter:       cfg.Jitter,
		observer:     cfg.Observer,
		logger:       cfg.Logger,
		sleep:        sleepContext,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}
	if c.maxRetryWait <= 0 {
		c.maxRetryWait = DefaultMaxRetryWait
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Call describes one logical API call.
type Call struct {
	// Op names the call for metrics and logs (e.g. "list_discussions").
	Op     string
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Do executes call, retrying transient failures, and decodes a successful
// JSON response into result (which may be nil).
func (c *Client) Do(ctx context.Context, call Call, result any) error {
	var payload []byte
	if call.Body != nil {
		data, err := json.Marshal(call.Body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	target := c.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	requestID, err := nanoid.New()
	if err != nil {
		return fmt.Errorf("generate request id: %w", err)
	}

	wait := c.retryWait
	for attempt := 1; ; attempt++ {
		resp, err := c.attempt(ctx, call, target, payload, requestID)
		last := attempt >= c.maxAttempts

		if err != nil {
			if ctx.Err() != nil || last {
				return fmt.Errorf("%s %s request failed: %w", c.serviceName, call.Op, err)
			}
			c.logger.DebugContext(ctx, "retrying after transport error",
				"service", c.serviceName, "op", call.Op, "attempt", attempt, "error", err)
			if err := c.sleep(ctx, c.withJitter(wait)); err != nil {
				return err
			}
			wait = min(wait*2, c.maxRetryWait)
			continue
		}

		if !shouldRetry(resp) {
			defer resp.Body.Close()
			return c.handleResponse(resp, call, requestID, result)
		}

		retryAfter := parseRetryAfter(resp)
		if last {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				return &RateLimitError{Service: c.serviceName, RetryAfter: retryAfter, Attempts: attempt}
			}
			return c.parseError(resp, call, requestID)
		}
		resp.Body.Close()

		delay := wait
		if retryAfter > 0 {
			delay = retryAfter
		}
		c.logger.DebugContext(ctx, "retrying after status",
			"service", c.serviceName, "op", call.Op, "attempt", attempt,
			"status", resp.StatusCode, "delay", delay)
		if err := c.sleep(ctx, c.withJitter(delay)); err != nil {
			return err
		}
		wait = min(wait*2, c.maxRetryWait)
	}
}

// attempt sends a single request.
func (c *Client) attempt(ctx context.Context, call Call, target string, payload []byte, requestID string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if c.observer != nil {
		c.observer(call.Op, status, time.Since(start))
	}
	return resp, err
}

// Get performs a GET request and decodes the response into result.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values, result any) error {
	return c.Do(ctx, Call{Op: op, Method: http.MethodGet, Path: path, Query: query}, result)
}

// Post performs a POST request and decodes the response into result.
func (c *Client) Post(ctx context.Context, op, path string, body, result any) error {
	return c.Do(ctx, Call{Op: op, Method: http.MethodPost, Path: path, Body: body}, result)
}

// handleResponse checks status and decodes the response body.
func (c *Client) handleResponse(resp *http.Response, call Call, requestID string, result any) error {
	if resp.StatusCode >= 400 {
		return c.parseError(resp, call, requestID)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s %s response: %w", c.serviceName, call.Op, err)
	}

	return nil
}

// parseError parses an error response into an APIError.
func (c *Client) parseError(resp *http.Response, call Call, requestID string) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		Service:    c.serviceName,
		Op:         call.Op,
		StatusCode: resp.StatusCode,
		Endpoint:   call.Path,
		RequestID:  requestID,
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			apiErr.Message = errResp.Message
		} else if errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

func (c *Client) withJitter(d time.Duration) time.Duration {
	if !c.jitter {
		return d
	}
	return time.Duration(float64(d) * (0.7 + rand.Float64()*0.6))
}

// shouldRetry reports whether a response status is transient.
func shouldRetry(resp *http.Response) bool {
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
