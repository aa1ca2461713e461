package jsonrpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
)

// HTTPConfig configures the one-shot transport.
type HTTPConfig struct {
	// Timeout bounds one request, including reading the body
	Timeout time.Duration

	// RequestsPerSecond limits the outgoing rate; zero disables limiting
	RequestsPerSecond float64

	// Burst is the number of requests allowed above the rate at once
	Burst int

	// BreakerMaxFailures is the number of consecutive transport failures
	// that open the circuit; zero disables the breaker
	BreakerMaxFailures uint32

	// BreakerTimeout is how long the circuit stays open before a probe
	BreakerTimeout time.Duration
}

// DefaultHTTPConfig provides defaults for the one-shot transport.
var DefaultHTTPConfig = HTTPConfig{
	Timeout:            30 * time.Second,
	Burst:              1,
	BreakerMaxFailures: 5,
	BreakerTimeout:     30 * time.Second,
}

// HTTPClient performs uncorrelated calls, one POST per call. Requests carry
// no id. Failed calls are never retried; repeated transport failures open a
// circuit breaker so later calls fail fast.
type HTTPClient struct {
	url     string
	hc      *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewHTTPClient creates a one-shot client posting to url.
func NewHTTPClient(url string, cfg HTTPConfig) *HTTPClient {
	c := &HTTPClient{
		url: url,
		hc:  &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}
	if cfg.BreakerMaxFailures > 0 {
		maxFailures := cfg.BreakerMaxFailures
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "ogmios-http",
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
			},
		})
	}
	return c
}

// BreakerState returns the circuit breaker state, or StateClosed if the
// breaker is disabled.
func (c *HTTPClient) BreakerState() gobreaker.State {
	if c.breaker == nil {
		return gobreaker.StateClosed
	}
	return c.breaker.State()
}

// Do posts one request and returns the raw response frame. A JSON-RPC error
// answered with a non-2xx status is still returned as a frame.
func (c *HTTPClient) Do(ctx context.Context, method string, params any) ([]byte, error) {
	frame, err := Encode(method, params, "")
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	lg := log.FromContext(ctx).WithName("http-client")
	if c.breaker == nil {
		return c.post(ctx, lg, method, frame)
	}

	res, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, lg, method, frame)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	return res, err
}

func (c *HTTPClient) post(ctx context.Context, lg log.Logger, method string, frame []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrSendingRequest, err)
	}
	lg.Debug("http call finished", "method", method, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode/100 != 2 {
		if _, err := IdentityOf(body); err == nil {
			return body, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	return body, nil
}

// CallHTTP performs a one-shot call and decodes the response.
func CallHTTP[T any](ctx context.Context, c *HTTPClient, method string, params any, tax *Taxonomy) (T, *ErrorVariant, error) {
	frame, err := c.Do(ctx, method, params)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return Decode[T](frame, tax)
}
