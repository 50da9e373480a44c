package modern

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/profilegateway/backend/internal/domain/profile"
	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/profilegateway/backend/internal/infrastructure/logger"
	"github.com/profilegateway/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	maxResponseBytes = 1 << 20
	maxErrorExcerpt  = 512
)

// TokenSource mints bearer tokens for outbound calls.
type TokenSource interface {
	ServiceToken(audience string) (string, error)
}

// HTTPClient talks JSON to a modern customer service:
//
//	GET  {base}/customers/{id}
//	POST {base}/customers
//	PUT  {base}/customers/{id}
//
// Only Get is retried, and only on transport failures, timeouts, 408, 429
// and 5xx responses.
type HTTPClient struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	attempts      uint
	delay         time.Duration
	tokens        TokenSource
	tokenAudience string
	logger        *zap.Logger
}

// HTTPClientOption configures an HTTPClient
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) HTTPClientOption {
	return func(c *HTTPClient) {
		c.timeout = d
	}
}

// WithRetry sets the total number of attempts for Get and the base delay
// between them.
func WithRetry(attempts uint, delay time.Duration) HTTPClientOption {
	return func(c *HTTPClient) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.delay = delay
	}
}

// WithServiceTokens signs every request with a token for audience.
func WithServiceTokens(tokens TokenSource, audience string) HTTPClientOption {
	return func(c *HTTPClient) {
		c.tokens = tokens
		c.tokenAudience = audience
	}
}

// WithClientLogger sets the logger
func WithClientLogger(l *zap.Logger) HTTPClientOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient creates a client for the service rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid modern backend URL %q", baseURL)
	}

	c := &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    5 * time.Second,
		attempts:   3,
		delay:      200 * time.Millisecond,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ profile.ModernBackend = (*HTTPClient)(nil)

// Get fetches a profile, retrying transient failures.
func (c *HTTPClient) Get(ctx context.Context, id int64) (*profile.ModernProfile, error) {
	endpoint, err := url.JoinPath(c.baseURL, "customers", strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}

	p, err := retry.DoWithData(
		func() (*profile.ModernProfile, error) {
			return c.do(ctx, "get", http.MethodGet, endpoint, nil)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.L(ctx).Warn("Retrying modern backend read",
				zap.Int64("customer_id", id),
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", c.attempts),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, asDomainError(err)
	}
	return p, nil
}

// Create submits p once.
func (c *HTTPClient) Create(ctx context.Context, p *profile.ModernProfile) (*profile.ModernProfile, error) {
	endpoint, err := url.JoinPath(c.baseURL, "customers")
	if err != nil {
		return nil, err
	}
	out, err := c.do(ctx, "create", http.MethodPost, endpoint, p)
	return out, asDomainError(err)
}

// Update replaces the profile at id once.
func (c *HTTPClient) Update(ctx context.Context, id int64, p *profile.ModernProfile) (*profile.ModernProfile, error) {
	endpoint, err := url.JoinPath(c.baseURL, "customers", strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	out, err := c.do(ctx, "update", http.MethodPut, endpoint, p)
	return out, asDomainError(err)
}

// do performs one attempt. Errors that retrying cannot fix are wrapped with
// retry.Unrecoverable.
func (c *HTTPClient) do(ctx context.Context, op, method, endpoint string, body *profile.ModernProfile) (*profile.ModernProfile, error) {
	ctx, span := telemetry.StartSpan(ctx, "modern."+op,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("http.request.method", method),
		telemetry.WithAttribute("url.full", endpoint),
	)
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, retry.Unrecoverable(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = transportError(err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer resp.Body.Close()

	telemetry.SetAttributes(span, "http.response.status_code", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
		err = statusError(resp.StatusCode, string(excerpt))
		telemetry.RecordError(span, err)
		if !isTransient(resp.StatusCode) {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	var out profile.ModernProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = contextError(ctxErr)
		} else {
			err = shared.WrapDomainError(shared.CodeBackendUnavailable, "Modern backend sent an unreadable response", err)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, endpoint string, body *profile.ModernProfile) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding profile: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if c.tokens != nil {
		token, err := c.tokens.ServiceToken(c.tokenAudience)
		if err != nil {
			return nil, fmt.Errorf("error signing service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	telemetry.InjectHTTPHeaders(ctx, req.Header)
	return req, nil
}

// asDomainError strips retry wrappers so the caller only ever sees backend
// error kinds. retry-go returns the bare context error when the caller gives
// up between attempts.
func asDomainError(err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return contextError(err)
	}
	return shared.WrapDomainError(shared.CodeBackendUnavailable, "Modern backend call failed", err)
}
