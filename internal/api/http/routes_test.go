package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

type fakeProvider struct {
	lastLocation weather.Location
	lastCity     string

	current  func(loc weather.Location) (weather.WeatherSnapshot, error)
	forecast func(city string) (weather.ProviderForecast, error)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Current(_ context.Context, loc weather.Location) (weather.WeatherSnapshot, error) {
	p.lastLocation = loc
	if p.current != nil {
		return p.current(loc)
	}
	return weather.WeatherSnapshot{CityName: loc.City, Temperature: 12.3, Description: "mist", Icon: "50d"}, nil
}

func (p *fakeProvider) Forecast(_ context.Context, city string) (weather.ProviderForecast, error) {
	p.lastCity = city
	if p.forecast != nil {
		return p.forecast(city)
	}
	return weather.ProviderForecast{City: city}, nil
}

func newTestApp(provider weather.Provider) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, weather.NewService(store.NewMemoryStore(10, time.Hour), provider))
	return app
}

func doGet(t *testing.T, app *fiber.App, target string, out any) int {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return resp.StatusCode
}

type detailBody struct {
	Detail string `json:"detail"`
}

func TestWeatherByCity(t *testing.T) {
	t.Run("returns snapshot", func(t *testing.T) {
		provider := &fakeProvider{}
		app := newTestApp(provider)

		var got weather.WeatherSnapshot
		status := doGet(t, app, "/api/weather/New%20York", &got)

		if status != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, status)
		}
		if provider.lastLocation.City != "New York" {
			t.Fatalf("expected decoded city name, got %q", provider.lastLocation.City)
		}
		if got.CityName != "New York" || got.Icon != "50d" {
			t.Fatalf("unexpected snapshot %+v", got)
		}
	})

	t.Run("unknown city", func(t *testing.T) {
		app := newTestApp(&fakeProvider{current: func(weather.Location) (weather.WeatherSnapshot, error) {
			return weather.WeatherSnapshot{}, weather.ErrCityNotFound
		}})

		var body detailBody
		status := doGet(t, app, "/api/weather/Atlantis", &body)

		if status != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, status)
		}
		if body.Detail != "City not found" {
			t.Fatalf("unexpected detail %q", body.Detail)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		app := newTestApp(&fakeProvider{current: func(weather.Location) (weather.WeatherSnapshot, error) {
			return weather.WeatherSnapshot{}, weather.ErrNotConfigured
		}})

		var body detailBody
		status := doGet(t, app, "/api/weather/Paris", &body)

		if status != http.StatusInternalServerError || body.Detail != "API key is not configured" {
			t.Fatalf("unexpected response %d %q", status, body.Detail)
		}
	})

	t.Run("upstream message is passed through", func(t *testing.T) {
		app := newTestApp(&fakeProvider{current: func(weather.Location) (weather.WeatherSnapshot, error) {
			return weather.WeatherSnapshot{}, &weather.UpstreamError{Status: http.StatusUnauthorized, Message: "Invalid API key"}
		}})

		var body detailBody
		status := doGet(t, app, "/api/weather/Paris", &body)

		if status != http.StatusUnauthorized || body.Detail != "Invalid API key" {
			t.Fatalf("unexpected response %d %q", status, body.Detail)
		}
	})

	t.Run("open breaker", func(t *testing.T) {
		app := newTestApp(&fakeProvider{current: func(weather.Location) (weather.WeatherSnapshot, error) {
			return weather.WeatherSnapshot{}, weather.ErrProviderUnavailable
		}})

		if status := doGet(t, app, "/api/weather/Paris", nil); status != http.StatusServiceUnavailable {
			t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, status)
		}
	})
}

func TestWeatherByCoordinates(t *testing.T) {
	t.Run("resolves city from position", func(t *testing.T) {
		provider := &fakeProvider{current: func(weather.Location) (weather.WeatherSnapshot, error) {
			return weather.WeatherSnapshot{CityName: "Almaty", Temperature: 21.4, Description: "clear sky", Icon: "01d"}, nil
		}}
		app := newTestApp(provider)

		var got weather.WeatherSnapshot
		status := doGet(t, app, "/api/weather/coords?lat=43.25&lon=76.95", &got)

		if status != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, status)
		}
		if provider.lastLocation.Coords == nil || *provider.lastLocation.Coords != (weather.Coordinates{Lat: 43.25, Lon: 76.95}) {
			t.Fatalf("expected coordinate lookup, got %+v", provider.lastLocation)
		}
		if got.CityName != "Almaty" || got.Temperature != 21.4 {
			t.Fatalf("unexpected snapshot %+v", got)
		}
	})

	t.Run("invalid query", func(t *testing.T) {
		app := newTestApp(&fakeProvider{})

		for _, target := range []string{
			"/api/weather/coords",
			"/api/weather/coords?lat=43.25",
			"/api/weather/coords?lat=abc&lon=76.95",
			"/api/weather/coords?lat=91&lon=0",
			"/api/weather/coords?lat=0&lon=-181",
		} {
			var body detailBody
			if status := doGet(t, app, target, &body); status != http.StatusBadRequest {
				t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, status)
			}
			if body.Detail == "" {
				t.Fatalf("%s: expected detail", target)
			}
		}
	})

	t.Run("upstream failure uses fixed message", func(t *testing.T) {
		app := newTestApp(&fakeProvider{current: func(weather.Location) (weather.WeatherSnapshot, error) {
			return weather.WeatherSnapshot{}, &weather.UpstreamError{Status: http.StatusBadRequest, Message: "wrong latitude"}
		}})

		var body detailBody
		status := doGet(t, app, "/api/weather/coords?lat=1&lon=1", &body)

		if status != http.StatusBadRequest || body.Detail != msgCoordsFailed {
			t.Fatalf("unexpected response %d %q", status, body.Detail)
		}
	})
}

func TestForecastRoute(t *testing.T) {
	var readings []weather.ForecastReading
	for day := 1; day <= 5; day++ {
		for _, hour := range []string{"09:00:00", "12:00:00", "15:00:00"} {
			readings = append(readings, weather.ForecastReading{
				Label:       "2024-05-0" + strconv.Itoa(day) + " " + hour,
				Temperature: float64(day),
				Description: "clear sky",
				Icon:        "01d",
			})
		}
	}

	provider := &fakeProvider{forecast: func(city string) (weather.ProviderForecast, error) {
		return weather.ProviderForecast{City: city, Readings: readings}, nil
	}}
	app := newTestApp(provider)

	var got weather.CityForecast
	status := doGet(t, app, "/api/forecast/Tokyo", &got)

	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}
	if got.City != "Tokyo" || len(got.Forecast) != 5 {
		t.Fatalf("unexpected forecast %+v", got)
	}
	for i, entry := range got.Forecast {
		if want := "2024-05-0" + strconv.Itoa(i+1); entry.Date != want {
			t.Fatalf("entry %d: expected date %s, got %s", i, want, entry.Date)
		}
	}

	t.Run("failure", func(t *testing.T) {
		app := newTestApp(&fakeProvider{forecast: func(string) (weather.ProviderForecast, error) {
			return weather.ProviderForecast{}, &weather.UpstreamError{Status: http.StatusNotFound, Message: "city not found"}
		}})

		var body detailBody
		status := doGet(t, app, "/api/forecast/Atlantis", &body)

		if status != http.StatusNotFound || body.Detail != msgForecastFailed {
			t.Fatalf("unexpected response %d %q", status, body.Detail)
		}
	})
}

func TestHistoryRoute(t *testing.T) {
	app := newTestApp(&fakeProvider{})

	if status := doGet(t, app, "/api/weather/Paris", nil); status != http.StatusOK {
		t.Fatalf("lookup failed with status %d", status)
	}

	from := strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10)
	to := strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10)

	var got struct {
		City    string                `json:"city"`
		Lookups []weather.Observation `json:"lookups"`
	}
	status := doGet(t, app, "/api/history?city=paris&from="+from+"&to="+to, &got)
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}
	if len(got.Lookups) != 1 || got.Lookups[0].Snapshot.CityName != "Paris" {
		t.Fatalf("unexpected lookups %+v", got.Lookups)
	}

	// Missing range is rejected.
	if status := doGet(t, app, "/api/history?city=paris", nil); status != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, status)
	}

	// Reversed range fails validation.
	if status := doGet(t, app, "/api/history?city=paris&from="+to+"&to="+from, nil); status != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, status)
	}

	// Unknown city.
	if status := doGet(t, app, "/api/history?city=oslo&from="+from+"&to="+to, nil); status != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, status)
	}
}
