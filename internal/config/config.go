package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-lookup/internal/log"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// AppConfig configures the weather-lookup API server.
type AppConfig struct {
	ApplicationName string

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string `validate:"required,url"`
	Lang               string `validate:"oneof=en ru"`

	// HTTPTimeout bounds every outbound OpenWeatherMap call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Lookup history retention.
	HistoryMaxEntries    int           `validate:"gte=0"` // per city (0 = unlimited)
	HistoryMaxAge        time.Duration `validate:"gte=0"` // 0 = unlimited
	HistorySweepInterval time.Duration `validate:"gt=0"`

	CORSOrigins    string
	ZipkinEndpoint string

	Port string `validate:"required,numeric"`
}

// ClientConfig configures the terminal client and its coordinator.
type ClientConfig struct {
	APIBaseURL    string        `validate:"required,url"`
	DefaultCity   string        `validate:"required"`
	ClientTimeout time.Duration `validate:"gte=0"`
	Lang          string        `validate:"oneof=en ru"`

	LocationMode    string `validate:"oneof=auto static geocode deny off"`
	Location        *weather.Coordinates
	GeocoderAPIKey  string
	LocationCity    string
	LocationCountry string

	LogFile        string
	ZipkinEndpoint string
}

// Load reads the server configuration from the environment (and .env when present).
func Load() (*AppConfig, error) {
	v := newViper()
	v.SetDefault("APPLICATION_NAME", "weather-lookup")
	v.SetDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("WEATHER_LANG", "en")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("HISTORY_MAX_ENTRIES", 96)
	v.SetDefault("HISTORY_MAX_AGE", "24h")
	v.SetDefault("HISTORY_SWEEP_INTERVAL", "15m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("PORT", "8000")

	cfg := &AppConfig{
		ApplicationName:      v.GetString("APPLICATION_NAME"),
		OpenWeatherAPIKey:    v.GetString("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL:   strings.TrimRight(v.GetString("OPENWEATHER_BASE_URL"), "/"),
		Lang:                 strings.ToLower(v.GetString("WEATHER_LANG")),
		HTTPTimeout:          v.GetDuration("HTTP_TIMEOUT"),
		HistoryMaxEntries:    v.GetInt("HISTORY_MAX_ENTRIES"),
		HistoryMaxAge:        v.GetDuration("HISTORY_MAX_AGE"),
		HistorySweepInterval: v.GetDuration("HISTORY_SWEEP_INTERVAL"),
		CORSOrigins:          v.GetString("CORS_ORIGINS"),
		ZipkinEndpoint:       v.GetString("ZIPKIN_ENDPOINT"),
		Port:                 v.GetString("PORT"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads the client configuration from the environment (and .env when present).
func LoadClient() (*ClientConfig, error) {
	v := newViper()
	v.SetDefault("WEATHER_API_URL", "http://localhost:8000/api")
	v.SetDefault("DEFAULT_CITY", "Almaty")
	v.SetDefault("CLIENT_TIMEOUT", "15s")
	v.SetDefault("WEATHER_LANG", "en")
	v.SetDefault("LOCATION_MODE", "auto")
	v.SetDefault("LOG_FILE", "weather-cli.log")

	cfg := &ClientConfig{
		APIBaseURL:      strings.TrimRight(v.GetString("WEATHER_API_URL"), "/"),
		DefaultCity:     strings.TrimSpace(v.GetString("DEFAULT_CITY")),
		ClientTimeout:   v.GetDuration("CLIENT_TIMEOUT"),
		Lang:            strings.ToLower(v.GetString("WEATHER_LANG")),
		LocationMode:    strings.ToLower(v.GetString("LOCATION_MODE")),
		GeocoderAPIKey:  v.GetString("GEOCODER_API_KEY"),
		LocationCity:    v.GetString("LOCATION_CITY"),
		LocationCountry: v.GetString("LOCATION_COUNTRY"),
		LogFile:         v.GetString("LOG_FILE"),
		ZipkinEndpoint:  v.GetString("ZIPKIN_ENDPOINT"),
	}

	loc, err := parseCoordinates(v.GetString("LOCATION_LAT"), v.GetString("LOCATION_LON"))
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file found or error loading it: %v", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	return v
}

// parseCoordinates returns nil when neither value is set.
func parseCoordinates(latStr, lonStr string) (*weather.Coordinates, error) {
	latStr, lonStr = strings.TrimSpace(latStr), strings.TrimSpace(lonStr)
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("LOCATION_LAT and LOCATION_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_LAT: %w", err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_LON: %w", err)
	}

	c := weather.Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
