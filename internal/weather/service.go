package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/log"
)

// Service answers weather lookups through a provider and records served lookups.
type Service struct {
	store    Store
	provider Provider
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
		now:      time.Now,
	}
}

// CurrentByCity returns the current conditions for a city name.
func (s *Service) CurrentByCity(ctx context.Context, city string) (WeatherSnapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return WeatherSnapshot{}, ErrCityNotFound
	}
	return s.current(ctx, Location{City: city})
}

// CurrentByCoordinates returns the current conditions at a position. The
// provider resolves the city name.
func (s *Service) CurrentByCoordinates(ctx context.Context, coords Coordinates) (WeatherSnapshot, error) {
	if err := coords.Validate(); err != nil {
		return WeatherSnapshot{}, err
	}
	return s.current(ctx, Location{Coords: &coords})
}

func (s *Service) current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	if s.provider == nil {
		return WeatherSnapshot{}, fmt.Errorf("no weather provider configured")
	}

	snapshot, err := s.provider.Current(ctx, loc)
	if err != nil {
		log.Warn("current weather lookup failed",
			zap.String("provider", s.provider.Name()),
			zap.String("location", loc.Key()),
			zap.Error(err))
		return WeatherSnapshot{}, err
	}

	if s.store != nil && snapshot.CityName != "" {
		s.store.Save(snapshot.CityName, Observation{
			Snapshot:   snapshot,
			ObservedAt: s.now().UTC(),
		})
	}
	return snapshot, nil
}

// Forecast returns one entry per day for a city, taken from the provider's
// noon readings.
func (s *Service) Forecast(ctx context.Context, city string) (CityForecast, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return CityForecast{}, ErrCityNotFound
	}
	if s.provider == nil {
		return CityForecast{}, fmt.Errorf("no weather provider configured")
	}

	raw, err := s.provider.Forecast(ctx, city)
	if err != nil {
		log.Warn("forecast lookup failed",
			zap.String("provider", s.provider.Name()),
			zap.String("city", city),
			zap.Error(err))
		return CityForecast{}, err
	}

	forecast := DailyAtNoon(raw.Readings)
	log.Debug("forecast reduced to daily entries",
		zap.String("city", raw.City),
		zap.Int("readings", len(raw.Readings)),
		zap.Int("days", len(forecast)))

	return CityForecast{City: raw.City, Forecast: forecast}, nil
}

// LatestLookup delegates to the underlying store.
func (s *Service) LatestLookup(city string) (Observation, error) {
	return s.store.GetLatest(city)
}

// History delegates to the underlying store.
func (s *Service) History(city string, from, to time.Time) ([]Observation, error) {
	return s.store.GetRange(city, from, to)
}
