package hylable

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphal/discuss"
	"github.com/randalmurphal/discuss/auth"
	devhttp "github.com/randalmurphal/discuss/http"
	"github.com/randalmurphal/discuss/metrics"
)

// serviceName labels errors and logs produced by the client.
const serviceName = "hylable"

var (
	_ discuss.Service              = (*Client)(nil)
	_ discuss.BulkTranscriptGetter = (*Client)(nil)
)

// Client provides access to the Hylable REST API.
type Client struct {
	cfg      *Config
	api      *devhttp.Client
	base     *http.Client
	logger   *slog.Logger
	observer devhttp.Observer

	// Rate limiting state
	mu        sync.RWMutex
	remaining int
	resetTime time.Time
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client that authenticated requests are
// layered on.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.base = httpClient
	}
}

// WithLogger sets the logger used for retries and listing diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver replaces the per-request observer. The default records
// Prometheus metrics.
func WithObserver(observer devhttp.Observer) ClientOption {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient creates a new Hylable client.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		logger:    slog.Default(),
		observer:  metrics.ObserveRequest,
		remaining: -1, // Unknown
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.base == nil {
		timeout := cfg.HTTP.Timeout
		if timeout == 0 {
			timeout = devhttp.DefaultTimeout
		}
		c.base = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    cfg.HTTP.MaxIdleConns,
				IdleConnTimeout: cfg.HTTP.IdleConnTimeout,
			},
		}
	}

	tracked := *c.base
	tracked.Transport = &rateLimitTransport{base: c.base.Transport, client: c}

	authed, err := auth.HTTPClient(context.Background(), cfg.Auth.Credentials(), &tracked)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigAuth, err)
	}

	c.api = devhttp.NewClient(devhttp.ClientConfig{
		Client:       authed,
		BaseURL:      strings.TrimSuffix(cfg.URL, "/"),
		ServiceName:  serviceName,
		MaxAttempts:  cfg.RateLimit.MaxRetries + 1,
		RetryWait:    cfg.RateLimit.RetryWaitMin,
		MaxRetryWait: cfg.RateLimit.RetryWaitMax,
		Jitter:       cfg.RateLimit.RetryJitter,
		Observer:     c.observer,
		Logger:       c.logger,
	})

	return c, nil
}

// ListDiscussions lists discussions of the configured course, newest first
// as returned by the service. opts.State is sent as a server-side filter and
// opts.Limit stops pagination once enough discussions have arrived.
func (c *Client) ListDiscussions(ctx context.Context, opts discuss.ListOptions) ([]discuss.Discussion, error) {
	if c.cfg.CourseID == "" {
		return nil, ErrCourseIDRequired
	}

	path := "/v1/courses/" + url.PathEscape(c.cfg.CourseID) + "/discussions"
	iter := devhttp.NewPageIterator(func(ctx context.Context, page int) (devhttp.Page[discuss.Discussion], error) {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page+1))
		if c.cfg.PageSize > 0 {
			query.Set("per_page", strconv.Itoa(c.cfg.PageSize))
		}
		if opts.State != "" {
			query.Set("status", string(opts.State))
		}

		var resp ListResponse
		if err := c.api.Get(ctx, "list_discussions", path, query, &resp); err != nil {
			return devhttp.Page[discuss.Discussion]{}, err
		}

		items := make([]discuss.Discussion, len(resp.Discussions))
		for i, d := range resp.Discussions {
			items[i] = d.ToDiscussion()
		}
		return devhttp.Page[discuss.Discussion]{Items: items, HasMore: resp.HasMore}, nil
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	discussions, err := iter.Take(ctx, limit)
	if err != nil {
		return nil, err
	}

	metrics.DiscussionsListed.Add(float64(len(discussions)))
	c.logger.DebugContext(ctx, "listed discussions",
		"course", c.cfg.CourseID, "count", len(discussions), "pages", iter.Pages())

	return discussions, nil
}

// GetDiscussion retrieves a discussion by id.
func (c *Client) GetDiscussion(ctx context.Context, id string) (*discuss.Discussion, error) {
	if id == "" {
		return nil, ErrDiscussionIDRequired
	}

	var d Discussion
	if err := c.api.Get(ctx, "get_discussion", "/v1/discussions/"+url.PathEscape(id), nil, &d); err != nil {
		if devhttp.IsNotFound(err) {
			return nil, notFound(id, err)
		}
		return nil, err
	}

	out := d.ToDiscussion()
	return &out, nil
}

// GetTranscript returns the recognized text of one discussion, one segment
// per line. A discussion with no recognized speech yields "".
func (c *Client) GetTranscript(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrDiscussionIDRequired
	}

	var resp ASRResponse
	if err := c.api.Get(ctx, "get_transcript", "/v1/discussions/"+url.PathEscape(id)+"/asr", nil, &resp); err != nil {
		if devhttp.IsNotFound(err) {
			return "", notFound(id, err)
		}
		return "", err
	}

	metrics.TranscriptsFetched.Inc()
	return Transcript(resp.Segments), nil
}

// GetTranscripts fetches several transcripts in one request. Ids the
// service does not know are omitted from the result.
func (c *Client) GetTranscripts(ctx context.Context, ids []string) (map[string]string, error) {
	texts := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return texts, nil
	}

	var resp BatchGetResponse
	if err := c.api.Post(ctx, "batch_get_transcripts", "/v1/discussions/asr:batchGet", BatchGetRequest{IDs: ids}, &resp); err != nil {
		return nil, err
	}

	for _, r := range resp.Results {
		texts[r.DiscussionID] = Transcript(r.Segments)
	}
	metrics.TranscriptsFetched.Add(float64(len(texts)))

	return texts, nil
}

// Ping checks connectivity and credentials by requesting a single-item page
// of the course listing.
func (c *Client) Ping(ctx context.Context) error {
	if c.cfg.CourseID == "" {
		return ErrCourseIDRequired
	}

	query := url.Values{"page": {"1"}, "per_page": {"1"}}
	path := "/v1/courses/" + url.PathEscape(c.cfg.CourseID) + "/discussions"
	return c.api.Get(ctx, "ping", path, query, nil)
}

// Config returns the client configuration.
func (c *Client) Config() *Config {
	return c.cfg
}

// RateLimitRemaining returns the remaining rate limit capacity.
// Returns -1 if unknown.
func (c *Client) RateLimitRemaining() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remaining
}

// RateLimitReset returns when the rate limit window resets, if known.
func (c *Client) RateLimitReset() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetTime
}

// updateRateLimitState updates rate limit tracking from response headers.
func (c *Client) updateRateLimitState(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.remaining = val
		}
	}

	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if t, err := time.Parse(time.RFC3339, reset); err == nil {
			c.resetTime = t
		}
	}
}

// rateLimitTransport records rate limit headers from every response.
type rateLimitTransport struct {
	base   http.RoundTripper
	client *Client
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err == nil {
		t.client.updateRateLimitState(resp)
	}
	return resp, err
}
