package eircode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	httpclient "github.com/natserract/eircode/pkg/http"
	"go.uber.org/zap"
)

type queryBuilder interface {
	query(apiKey string) url.Values
}

// send validates req, performs a single GET against path and interprets the
// body. Any HTTP status is accepted; only the body decides the outcome.
func (c *Client) send(ctx context.Context, operation, path string, req queryBuilder) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	requestID := uuid.NewString()
	logger := c.logger.With(
		zap.String("operation", operation),
		zap.String("request_id", requestID))

	data, outcome, err := c.roundTrip(ctx, logger, operation, path, req)
	c.metrics.observe(operation, outcome, time.Since(start))

	switch outcome {
	case OutcomeSuccess:
		logger.Debug("Lookup succeeded", zap.Duration("duration", time.Since(start)))
	case OutcomeAPIError:
		logger.Info("Lookup returned an API error", zap.Error(err))
	case OutcomeNonObject:
		logger.Warn("Response is not a JSON object, returning no data")
	default:
		logger.Error("Lookup failed", zap.String("outcome", string(outcome)), zap.Error(err))
	}

	return data, err
}

func (c *Client) roundTrip(ctx context.Context, logger *zap.Logger, operation, path string, req queryBuilder) (any, Outcome, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, OutcomeInvalidRequest, &ValidationError{Operation: operation, Err: err}
	}

	endpoint, err := httpclient.BuildURL(c.baseURL, path, req.query(c.apiKey))
	if err != nil {
		return nil, OutcomeInvalidRequest, fmt.Errorf("failed to build URL: %w", err)
	}

	logger.Debug("Making GET request", zap.String("path", path))
	resp, err := c.httpClient.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, OutcomeTransportError, err
	}

	logger.Debug("Received response",
		zap.Int("status_code", resp.StatusCode),
		zap.Int("body_bytes", len(resp.Body)))

	return decodeResponse(resp.Body)
}

// decodeResponse parses body as JSON, accepting any top-level value. Only a
// top-level object is handed back as data; anything else yields no data and
// no error.
func decodeResponse(body []byte) (any, Outcome, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, OutcomeInvalidJSON, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, OutcomeNonObject, nil
	}

	if apiErr := extractError(obj); apiErr != nil {
		return obj, OutcomeAPIError, apiErr
	}
	return obj, OutcomeSuccess, nil
}

// extractError reads the first entry of the "errors" array. Only a complete
// entry, with a string message and a numeric type.code, counts as an error.
func extractError(obj map[string]any) *APIError {
	entries, ok := obj["errors"].([]any)
	if !ok || len(entries) == 0 {
		return nil
	}
	first, ok := entries[0].(map[string]any)
	if !ok {
		return nil
	}
	message, ok := first["message"].(string)
	if !ok {
		return nil
	}
	errType, ok := first["type"].(map[string]any)
	if !ok {
		return nil
	}
	code, ok := errType["code"].(float64)
	if !ok {
		return nil
	}
	return &APIError{
		Domain:  ErrorDomain,
		Code:    int(code),
		Message: message,
	}
}
