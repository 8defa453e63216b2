package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

var errBuildRequest = errors.New("failed to create request")

type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	retry      RetryPolicy
	redacted   []string
	logger     *zap.Logger
}

// RetryPolicy controls how many attempts Do makes. The zero value makes a
// single attempt.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

func (p RetryPolicy) enabled() bool {
	return p.MaxTries > 1
}

type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	Context context.Context
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying net/http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout of the default net/http client.
// It has no effect when WithHTTPClient supplies a client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithRetry(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithRedactedQueryParams masks the values of the named query parameters in
// logged URLs.
func WithRedactedQueryParams(names ...string) Option {
	return func(c *Client) {
		c.redacted = append(c.redacted, names...)
	}
}

func NewClient(opts ...Option) *Client {
	logger, _ := zap.NewProduction()
	return NewClientWithLogger(logger, opts...)
}

// NewClientWithLogger creates a new HTTP client with a custom logger
func NewClientWithLogger(logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		timeout: defaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}
	return c
}

// Do sends the request and returns the response for any status code.
// Network failures and 5xx responses are retried only when the retry policy
// allows more than one try; once tries run out a 5xx is handed back as a
// normal response so the caller can read its body.
func (c *Client) Do(opts RequestOptions) (*Response, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	if !c.retry.enabled() {
		return c.attempt(ctx, opts)
	}

	expBackoff := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		expBackoff.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		expBackoff.MaxInterval = c.retry.MaxInterval
	}
	expBackoff.Reset()

	maxElapsed := c.retry.MaxElapsed
	if maxElapsed == 0 {
		maxElapsed = 2 * time.Minute
	}

	var last *Response
	operation := func() (*Response, error) {
		resp, err := c.attempt(ctx, opts)
		if err != nil {
			last = nil
			if errors.Is(err, errBuildRequest) {
				return nil, backoff.Permanent(err)
			}
			c.logger.Warn("HTTP request failed, will retry",
				zap.Error(err),
				zap.String("method", opts.Method),
				zap.String("url", RedactURL(opts.URL, c.redacted...)))
			return nil, err
		}
		last = resp

		if resp.StatusCode >= 500 {
			c.logger.Warn("Server error, will retry",
				zap.Int("status_code", resp.StatusCode),
				zap.String("method", opts.Method),
				zap.String("url", RedactURL(opts.URL, c.redacted...)))
			return nil, fmt.Errorf("server error: %d", resp.StatusCode)
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(c.retry.MaxTries),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	if err != nil {
		if last != nil && ctx.Err() == nil {
			return last, nil
		}
		c.logger.Error("HTTP request failed after retries",
			zap.Error(err),
			zap.String("method", opts.Method),
			zap.String("url", RedactURL(opts.URL, c.redacted...)))
		return nil, err
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, opts RequestOptions) (*Response, error) {
	req, err := c.buildRequest(ctx, opts)
	if err != nil {
		c.logger.Error("Failed to build request", zap.Error(err), zap.String("method", opts.Method), zap.String("url", RedactURL(opts.URL, c.redacted...)))
		return nil, err
	}

	c.logger.Debug("Making HTTP request",
		zap.String("method", opts.Method),
		zap.String("url", RedactURL(opts.URL, c.redacted...)))

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = RedactURL(urlErr.URL, c.redacted...)
		}
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.logger.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("HTTP request completed",
		zap.Int("status_code", httpResp.StatusCode),
		zap.String("method", opts.Method),
		zap.String("url", RedactURL(opts.URL, c.redacted...)))

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBuildRequest, err)
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(RequestOptions{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers,
		Context: ctx,
	})
}
