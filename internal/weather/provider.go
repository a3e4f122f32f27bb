package weather

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ForecastReading is a single 3-hourly forecast point as returned by a provider.
type ForecastReading struct {
	// Label is the provider's local timestamp text, e.g. "2024-05-01 12:00:00".
	Label       string
	Temperature float64
	Description string
	Icon        string
}

// ProviderForecast is a provider's raw forecast for a city.
type ProviderForecast struct {
	City     string
	Readings []ForecastReading
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap).
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (WeatherSnapshot, error)
	Forecast(ctx context.Context, city string) (ProviderForecast, error)
}

// Store is the contract the lookup history store must satisfy.
type Store interface {
	Save(city string, obs Observation)
	GetLatest(city string) (Observation, error)
	GetRange(city string, from, to time.Time) ([]Observation, error)
}
