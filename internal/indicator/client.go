// Package indicator invokes remote FAIR maturity indicator tests and turns
// their JSON-LD responses into verdicts.
package indicator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fairdata/faircheck/internal/models"
)

// maxResponseBytes bounds how much of a test response is read.
const maxResponseBytes = 16 << 20

//go:generate go tool mockgen -source=client.go -destination=mocks/mock_evaluator.go -package=mocks

// Evaluator runs one test against one resource.
type Evaluator interface {
	Evaluate(ctx context.Context, resource string, spec models.TestSpec) (models.Verdict, error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each test call. Zero means no client-side timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with each call.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client is the HTTP Evaluator.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// NewClient creates a Client. Without options it uses http.DefaultClient
// and imposes no timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{httpClient: http.DefaultClient}
	for _, o := range opts {
		o(c)
	}
	return c
}

type evaluationRequest struct {
	Subject string `json:"subject"`
}

// Evaluate POSTs the resource to the test interface and interprets the reply.
// Failures that leave the pair without a verdict are *UnusableResponseError;
// a cancelled context is returned as is.
func (c *Client) Evaluate(ctx context.Context, resource string, spec models.TestSpec) (models.Verdict, error) {
	v, err := c.evaluate(ctx, resource, spec)
	var unusable *UnusableResponseError
	if errors.As(err, &unusable) {
		unusable.Interface = spec.Interface
		logUnusable(resource, spec, unusable)
	}
	return v, err
}

func (c *Client) evaluate(ctx context.Context, resource string, spec models.TestSpec) (models.Verdict, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(evaluationRequest{Subject: resource})
	if err != nil {
		return models.Verdict{}, fmt.Errorf("encoding request for %s: %w", spec.Interface, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spec.Interface, bytes.NewReader(payload))
	if err != nil {
		return models.Verdict{}, c.unusable(spec, 0, "invalid interface URL", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := context.Cause(ctx); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return models.Verdict{}, ctxErr
		}
		return models.Verdict{}, c.unusable(spec, 0, "request failed", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.Verdict{}, c.unusable(spec, resp.StatusCode, "reading body", err)
	}

	assessment, err := Interpret(resp.StatusCode, body)
	if err != nil {
		return models.Verdict{}, err
	}

	slog.Debug("Test evaluated", "test", spec.Name, "resource", resource, "passed", assessment.Passed)

	return models.Verdict{
		TestName: spec.Name,
		Passed:   assessment.Passed,
		Comment:  assessment.Comment,
	}, nil
}

func (c *Client) unusable(spec models.TestSpec, status int, reason string, err error) error {
	return &UnusableResponseError{
		Interface:  spec.Interface,
		StatusCode: status,
		Reason:     fmt.Sprintf("%s: %v", reason, err),
		Err:        err,
	}
}

func logUnusable(resource string, spec models.TestSpec, err *UnusableResponseError) {
	attrs := []any{"interface", spec.Interface, "resource", resource, "reason", err.Reason}
	if err.StatusCode != 0 {
		attrs = append(attrs, "status", err.StatusCode)
	}
	slog.Error("Error calling interface", attrs...)
}
