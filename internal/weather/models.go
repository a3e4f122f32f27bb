package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Icon image hosting is a fixed external convention.
const (
	iconURLFormat         = "https://openweathermap.org/img/wn/%s@2x.png"
	forecastIconURLFormat = "https://openweathermap.org/img/wn/%s.png"
)

// Coordinates is a geographic position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Validate reports whether the coordinates are within range.
func (c Coordinates) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid coordinates %.4f,%.4f: %w", c.Lat, c.Lon, err)
	}
	return nil
}

// Location identifies what to look up: a city name or, when Coords is set, a position.
type Location struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.Coords != nil {
		return fmt.Sprintf("%.4f,%.4f", l.Coords.Lat, l.Coords.Lon)
	}
	return CityKey(l.City)
}

// CityKey normalizes a city name for use as a store key.
func CityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// WeatherSnapshot is the current conditions for one city at fetch time.
type WeatherSnapshot struct {
	CityName    string  `json:"city_name"`
	Temperature float64 `json:"temperature"` // Celsius
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// IconURL returns the large icon image for the snapshot.
func (s WeatherSnapshot) IconURL() string {
	return IconURL(s.Icon)
}

// ForecastEntry is one day of a forecast.
type ForecastEntry struct {
	Date        string  `json:"date"` // calendar date label, YYYY-MM-DD
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// IconURL returns the small icon image for the entry.
func (e ForecastEntry) IconURL() string {
	return ForecastIconURL(e.Icon)
}

// Forecast is an ordered, chronological sequence of daily entries.
type Forecast []ForecastEntry

// CityForecast is the forecast payload served for a city.
type CityForecast struct {
	City     string   `json:"city"`
	Forecast Forecast `json:"forecast"`
}

// Observation is a snapshot as served at a point in time.
type Observation struct {
	Snapshot   WeatherSnapshot `json:"snapshot"`
	ObservedAt time.Time       `json:"observedAt"` // always UTC
}

// IconURL builds the current-weather icon URL for an icon code.
func IconURL(icon string) string {
	return fmt.Sprintf(iconURLFormat, icon)
}

// ForecastIconURL builds the forecast icon URL for an icon code.
func ForecastIconURL(icon string) string {
	return fmt.Sprintf(forecastIconURLFormat, icon)
}

// DisplayTemperature rounds a temperature to whole degrees, halves rounding up.
func DisplayTemperature(celsius float64) int {
	return int(math.Floor(celsius + 0.5))
}
