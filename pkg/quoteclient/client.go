// Package quoteclient submits quote requests to the quote API after
// checking them with the same validator the server uses.
package quoteclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anthonyhasrouny/portfolio/pkg/models"
	"github.com/anthonyhasrouny/portfolio/pkg/quote"
)

// FallbackMessage is shown when the server's error body cannot be read.
const FallbackMessage = "Failed to submit form"

const (
	defaultTimeout = 20 * time.Second
	maxErrorBody   = 64 << 10
)

// SubmitError is returned for a non-2xx response.
type SubmitError struct {
	Status  int
	Message string
	Fields  []models.FieldError
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("quote rejected (%d): %s", e.Status, e.Message)
}

// RateLimited reports whether the server refused the request with 429.
func (e *SubmitError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client posts quote requests to a single endpoint.
type Client struct {
	endpoint  string
	http      *http.Client
	validator *quote.Validator
}

// New creates a client for endpoint, e.g. https://api.example.com/api/v1/quote.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:  endpoint,
		http:      &http.Client{Timeout: defaultTimeout},
		validator: quote.NewValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate normalizes req and checks it locally. No request is sent.
func (c *Client) Validate(req models.QuoteRequest) (models.QuoteRequest, error) {
	req = req.Normalized()
	return req, c.validator.Validate(req)
}

// Submit validates a normalized copy of req and, if it passes, posts req
// exactly once as the caller wrote it. A local validation failure returns
// the validator's error and sends nothing.
func (c *Client) Submit(ctx context.Context, req models.QuoteRequest) error {
	if _, err := c.Validate(req); err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("submit quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeError(resp)
}

func decodeError(resp *http.Response) error {
	serr := &SubmitError{Status: resp.StatusCode, Message: FallbackMessage}

	var body models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err == nil && body.Error != "" {
		serr.Message = body.Error
		serr.Fields = body.Fields
	}
	return serr
}

// IsSubmitError unwraps a *SubmitError from err.
func IsSubmitError(err error) (*SubmitError, bool) {
	var serr *SubmitError
	ok := errors.As(err, &serr)
	return serr, ok
}
