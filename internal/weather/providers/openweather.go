package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	lang    string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL, lang string) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if baseURL == "" {
		baseURL = defaultOpenWeatherBaseURL
	}
	if lang == "" {
		lang = "en"
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		lang:    lang,
		httpCfg: HTTPClientConfig{Client: client},
		circuit: cb,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrentPayload struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []owmCondition `json:"weather"`
}

type owmForecastPayload struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
}

// Current fetches current conditions by city name or, when set, by coordinates.
func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error) {
	if p.apiKey == "" {
		return weather.WeatherSnapshot{}, weather.ErrNotConfigured
	}

	values := p.baseValues()
	if loc.Coords != nil {
		values.Set("lat", strconv.FormatFloat(loc.Coords.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(loc.Coords.Lon, 'f', -1, 64))
	} else {
		values.Set("q", loc.City)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, "openweather.current", p.getRequest("/weather", values))
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound && loc.Coords == nil {
			return weather.WeatherSnapshot{}, weather.ErrCityNotFound
		}
		return weather.WeatherSnapshot{}, &weather.UpstreamError{
			Status:  resp.StatusCode,
			Message: decodeErrorMessage(resp.Body),
		}
	}

	var payload owmCurrentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("decode current weather: %w", err)
	}

	cond := firstCondition(payload.Weather)
	return weather.WeatherSnapshot{
		CityName:    payload.Name,
		Temperature: payload.Main.Temp,
		Description: cond.Description,
		Icon:        cond.Icon,
	}, nil
}

// Forecast fetches the 5 day / 3 hour forecast for a city.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, city string) (weather.ProviderForecast, error) {
	if p.apiKey == "" {
		return weather.ProviderForecast{}, weather.ErrNotConfigured
	}

	values := p.baseValues()
	values.Set("q", city)

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, "openweather.forecast", p.getRequest("/forecast", values))
	if err != nil {
		return weather.ProviderForecast{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.ProviderForecast{}, &weather.UpstreamError{
			Status:  resp.StatusCode,
			Message: decodeErrorMessage(resp.Body),
		}
	}

	var payload owmForecastPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderForecast{}, fmt.Errorf("decode forecast: %w", err)
	}

	readings := make([]weather.ForecastReading, 0, len(payload.List))
	for _, item := range payload.List {
		cond := firstCondition(item.Weather)
		readings = append(readings, weather.ForecastReading{
			Label:       item.DtTxt,
			Temperature: item.Main.Temp,
			Description: cond.Description,
			Icon:        cond.Icon,
		})
	}

	return weather.ProviderForecast{City: payload.City.Name, Readings: readings}, nil
}

func (p *OpenWeatherProvider) baseValues() url.Values {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("lang", p.lang)
	return values
}

func (p *OpenWeatherProvider) getRequest(path string, values url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

func firstCondition(items []owmCondition) owmCondition {
	if len(items) == 0 {
		return owmCondition{}
	}
	return items[0]
}

// decodeErrorMessage extracts OpenWeatherMap's {"cod": ..., "message": ...} text.
func decodeErrorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}
