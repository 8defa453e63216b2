// Package eircode provides a client for the Autoaddress Eircode address
// lookup API.
//
// Eircode is the Irish national postcode system. The Autoaddress API exposes
// lookups against the Eircode Address Database (ECAD):
//   - FindAddress: search by free-text address or postcode
//   - PostcodeLookup: resolve an Eircode to its address
//   - VerifyAddress: check that an address matches an Eircode
//   - GetEcadData: fetch the ECAD record for an ecad id
//
// Every call carries the developer key as the "key" query parameter and
// returns the decoded JSON body untyped. A JSON object with an "errors"
// array is reported as an *APIError while still returning the object as
// data. See https://www.autoaddress.ie/support/developer-centre/api for the
// response shapes.
package eircode

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/natserract/eircode/pkg/config"
	httpclient "github.com/natserract/eircode/pkg/http"
	"go.uber.org/zap"
)

// DefaultBaseURL is the current Autoaddress API endpoint.
const DefaultBaseURL = "https://api.autoaddress.ie/2.0"

var ErrAPIKeyRequired = errors.New("eircode: developer key is required")

// Client is the main client for the Eircode lookup API. It holds no mutable
// state between calls and is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	metrics    *Metrics
	validate   *validator.Validate
	logger     *zap.Logger
}

type options struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retry      httpclient.RetryPolicy
	metrics    *Metrics
	logger     *zap.Logger
}

// Option configures optional client behavior.
type Option func(*options)

// WithBaseURL overrides the Autoaddress endpoint, e.g. for a mock server.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			o.baseURL = trimmed
		}
	}
}

// WithHTTPClient overrides the default net/http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRetry enables retries of network failures and 5xx responses. Requests
// are attempted once unless this is set with MaxTries above one.
func WithRetry(p httpclient.RetryPolicy) Option {
	return func(o *options) {
		o.retry = p
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a client for the given developer key. Without WithLogger the
// client logs through a production zap logger.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyRequired
	}

	o := &options{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger, _ = zap.NewProduction()
	}

	httpOpts := []httpclient.Option{
		httpclient.WithRetry(o.retry),
		httpclient.WithRedactedQueryParams(paramKey),
	}
	if o.httpClient != nil {
		httpOpts = append(httpOpts, httpclient.WithHTTPClient(o.httpClient))
	}
	if o.timeout > 0 {
		httpOpts = append(httpOpts, httpclient.WithTimeout(o.timeout))
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    o.baseURL,
		httpClient: httpclient.NewClientWithLogger(o.logger, httpOpts...),
		metrics:    o.metrics,
		validate:   validator.New(),
		logger:     o.logger,
	}, nil
}

// NewFromConfig creates a client from loaded configuration.
func NewFromConfig(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	base := []Option{
		WithBaseURL(cfg.BaseURI),
		WithTimeout(cfg.Timeout),
		WithRetry(httpclient.RetryPolicy{MaxTries: cfg.MaxTries}),
		WithLogger(logger),
	}
	return New(cfg.APIKey, append(base, opts...)...)
}
