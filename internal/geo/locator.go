package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrPermissionDenied means the user (or configuration) refused location access.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrPositionUnavailable means a position could not be determined.
	ErrPositionUnavailable = errors.New("position unavailable")
)

// Locator is the device location capability.
type Locator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// StaticLocator always reports the same position.
type StaticLocator struct {
	Coords weather.Coordinates
}

func (l StaticLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}
	return l.Coords, nil
}

// DeniedLocator refuses every request, like a user declining a permission prompt.
type DeniedLocator struct{}

func (DeniedLocator) Locate(context.Context) (weather.Coordinates, error) {
	return weather.Coordinates{}, ErrPermissionDenied
}

// GeocoderLocator resolves a configured address to coordinates with the Google
// Geocoding API.
type GeocoderLocator struct {
	apiKey  string
	address geocoder.Address
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

// NewGeocoderLocator creates a locator for the given city and country.
func NewGeocoderLocator(apiKey, city, country string) *GeocoderLocator {
	return &GeocoderLocator{
		apiKey: apiKey,
		address: geocoder.Address{
			City:    strings.TrimSpace(city),
			Country: strings.TrimSpace(country),
		},
		lookup: geocoder.Geocoding,
	}
}

func (l *GeocoderLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if l.apiKey == "" {
		return weather.Coordinates{}, ErrPermissionDenied
	}
	if l.address.City == "" {
		return weather.Coordinates{}, fmt.Errorf("%w: no address configured", ErrPositionUnavailable)
	}

	// The geocoder package reads its key from a package variable.
	geocoder.ApiKey = l.apiKey

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := l.lookup(l.address)
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return weather.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, r.err)
		}
		coords := weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude}
		if err := coords.Validate(); err != nil {
			return weather.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
		}
		return coords, nil
	}
}

// Options selects and configures a locator.
type Options struct {
	Mode           string // auto, static, geocode, deny, off
	Static         *weather.Coordinates
	GeocoderAPIKey string
	City           string
	Country        string
}

// FromOptions builds the locator for the given mode. A nil Locator means the
// capability is absent.
func FromOptions(opts Options) (Locator, error) {
	switch strings.ToLower(opts.Mode) {
	case "off":
		return nil, nil
	case "deny":
		return DeniedLocator{}, nil
	case "static":
		if opts.Static == nil {
			return nil, fmt.Errorf("static location mode requires LOCATION_LAT and LOCATION_LON")
		}
		return StaticLocator{Coords: *opts.Static}, nil
	case "geocode":
		return NewGeocoderLocator(opts.GeocoderAPIKey, opts.City, opts.Country), nil
	case "", "auto":
		if opts.Static != nil {
			return StaticLocator{Coords: *opts.Static}, nil
		}
		if opts.GeocoderAPIKey != "" && opts.City != "" {
			return NewGeocoderLocator(opts.GeocoderAPIKey, opts.City, opts.Country), nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown location mode %q", opts.Mode)
	}
}
