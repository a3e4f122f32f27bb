package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var tracer = otel.Tracer("weather-lookup/client")

// APIError is a non-success response from the weather-lookup API.
type APIError struct {
	Status int
	detail string
}

func (e *APIError) Error() string {
	if e.detail == "" {
		return fmt.Sprintf("weather api: status %d", e.Status)
	}
	return fmt.Sprintf("weather api: status %d: %s", e.Status, e.detail)
}

// Detail is the server-supplied message, empty when the response had none.
func (e *APIError) Detail() string {
	return e.detail
}

// Client calls the weather-lookup API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API rooted at baseURL (e.g. http://localhost:8000/api).
// A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WeatherByCity calls GET /weather/{city}.
func (c *Client) WeatherByCity(ctx context.Context, city string) (weather.WeatherSnapshot, error) {
	var snapshot weather.WeatherSnapshot
	err := c.get(ctx, "weather.by_city", "/weather/"+url.PathEscape(city), nil, &snapshot)
	return snapshot, err
}

// WeatherByCoordinates calls GET /weather/coords?lat=..&lon=..
func (c *Client) WeatherByCoordinates(ctx context.Context, lat, lon float64) (weather.WeatherSnapshot, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var snapshot weather.WeatherSnapshot
	err := c.get(ctx, "weather.by_coords", "/weather/coords", query, &snapshot)
	return snapshot, err
}

// Forecast calls GET /forecast/{city} and returns its ordered entries.
func (c *Client) Forecast(ctx context.Context, city string) (weather.Forecast, error) {
	var payload weather.CityForecast
	if err := c.get(ctx, "forecast", "/forecast/"+url.PathEscape(city), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Forecast, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) (err error) {
	ctx, span := tracer.Start(ctx, op)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, detail: decodeDetail(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// decodeDetail reads the {"detail": "..."} error body, if any.
func decodeDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}
