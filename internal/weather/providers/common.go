package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// HTTPClientConfig bundles the outbound HTTP client settings.
type HTTPClientConfig struct {
	Client *http.Client
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errNoHTTPClient = errors.New("http client not configured")
)

var tracer = otel.Tracer("weather-lookup/providers")

// doRequest executes the request behind a circuit breaker. Network errors,
// 429 and 5xx trip the breaker; other responses are returned to the caller,
// which owns the body. Requests are never retried.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	spanName string,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}

	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			defer resp.Body.Close()
			upstream := &weather.UpstreamError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, fmt.Errorf("%w: %w", errRateLimited, upstream)
			}
			return nil, fmt.Errorf("%w: %w", errServerError, upstream)
		}

		return resp, nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", weather.ErrProviderUnavailable, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}
