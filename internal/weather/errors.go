package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when the provider has no API key.
	ErrNotConfigured = errors.New("API key is not configured")

	// ErrCityNotFound is returned when the provider does not know the city.
	ErrCityNotFound = errors.New("City not found")

	// ErrProviderUnavailable is returned while the provider's circuit breaker is open.
	ErrProviderUnavailable = errors.New("weather provider unavailable")
)

// UpstreamError is a non-success response from the weather provider.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}
