package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/log"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultCity is looked up when no location is available.
const DefaultCity = "Almaty"

// WeatherAPI is the remote weather API the coordinator drives.
type WeatherAPI interface {
	WeatherByCity(ctx context.Context, city string) (weather.WeatherSnapshot, error)
	WeatherByCoordinates(ctx context.Context, lat, lon float64) (weather.WeatherSnapshot, error)
	Forecast(ctx context.Context, city string) (weather.Forecast, error)
}

// State is what the view renders. IsLoading implies Weather == nil and
// ErrorMessage == "" while a primary fetch is in flight.
type State struct {
	QueryCity    string
	Weather      *weather.WeatherSnapshot
	Forecast     weather.Forecast
	IsLoading    bool
	ErrorMessage string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLocator sets the location capability. Without one the default city is used.
func WithLocator(l geo.Locator) Option {
	return func(c *Coordinator) { c.locator = l }
}

// WithDefaultCity overrides the fallback city.
func WithDefaultCity(city string) Option {
	return func(c *Coordinator) {
		if city = strings.TrimSpace(city); city != "" {
			c.defaultCity = city
		}
	}
}

// WithMessages sets the fallback error texts.
func WithMessages(m Messages) Option {
	return func(c *Coordinator) { c.messages = m }
}

// Coordinator resolves the location, sequences the weather and forecast
// requests and owns the resulting State.
//
// Every primary fetch takes a new sequence number. A response that arrives
// after a later primary fetch has started is dropped, together with the
// forecast it would have triggered.
type Coordinator struct {
	api         WeatherAPI
	locator     geo.Locator
	defaultCity string
	messages    Messages

	mu    sync.Mutex
	state State
	seq   uint64

	changes chan struct{}
	wg      sync.WaitGroup
}

// New creates a Coordinator in the idle state with the default city in the query box.
func New(api WeatherAPI, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:         api,
		defaultCity: DefaultCity,
		messages:    MessagesFor("en"),
		changes:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.QueryCity = c.defaultCity
	return c
}

// State returns a copy of the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if c.state.Weather != nil {
		w := *c.state.Weather
		s.Weather = &w
	}
	if c.state.Forecast != nil {
		s.Forecast = append(weather.Forecast(nil), c.state.Forecast...)
	}
	return s
}

// Changes signals after every state transition. Signals coalesce: read State
// after receiving.
func (c *Coordinator) Changes() <-chan struct{} {
	return c.changes
}

// Wait blocks until background forecast fetches have finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// SetQueryCity mirrors the live value of the input box.
func (c *Coordinator) SetQueryCity(s string) {
	c.mu.Lock()
	c.state.QueryCity = s
	c.mu.Unlock()
	c.notify()
}

// ResolveInitialLocation looks up the device position and fetches its
// weather, falling back to the default city when the position is unavailable.
func (c *Coordinator) ResolveInitialLocation(ctx context.Context) {
	if c.locator == nil {
		log.Info("location capability absent, using default city", zap.String("city", c.defaultCity))
		c.FetchWeatherByCity(ctx, c.defaultCity)
		return
	}

	coords, err := c.locator.Locate(ctx)
	if err != nil {
		log.Info("location unavailable, using default city",
			zap.String("city", c.defaultCity),
			zap.Bool("denied", errors.Is(err, geo.ErrPermissionDenied)),
			zap.Error(err))
		c.FetchWeatherByCity(ctx, c.defaultCity)
		return
	}

	c.FetchWeatherByCoordinates(ctx, coords.Lat, coords.Lon)
}

// SubmitCityQuery fetches the weather for the trimmed input. Blank input is ignored.
func (c *Coordinator) SubmitCityQuery(ctx context.Context, rawInput string) {
	city := strings.TrimSpace(rawInput)
	if city == "" {
		return
	}
	c.FetchWeatherByCity(ctx, city)
}

// FetchWeatherByCity runs a primary fetch for a city name. It returns once the
// weather has settled; the forecast follow-up runs in the background.
func (c *Coordinator) FetchWeatherByCity(ctx context.Context, cityName string) {
	c.primary(ctx, c.messages.WeatherFailed,
		func(ctx context.Context) (weather.WeatherSnapshot, error) {
			return c.api.WeatherByCity(ctx, cityName)
		},
		func(weather.WeatherSnapshot) string { return cityName })
}

// FetchWeatherByCoordinates runs a primary fetch for a position. The forecast
// follow-up uses the city name the server resolved.
func (c *Coordinator) FetchWeatherByCoordinates(ctx context.Context, lat, lon float64) {
	c.primary(ctx, c.messages.LocationFailed,
		func(ctx context.Context) (weather.WeatherSnapshot, error) {
			return c.api.WeatherByCoordinates(ctx, lat, lon)
		},
		func(s weather.WeatherSnapshot) string { return s.CityName })
}

// FetchForecast replaces the forecast on success. Failures are logged and
// leave the current forecast in place.
func (c *Coordinator) FetchForecast(ctx context.Context, cityName string) {
	c.mu.Lock()
	seq := c.seq
	c.mu.Unlock()

	c.fetchForecast(ctx, seq, cityName)
}

func (c *Coordinator) primary(
	ctx context.Context,
	fallback string,
	fetch func(context.Context) (weather.WeatherSnapshot, error),
	forecastCity func(weather.WeatherSnapshot) string,
) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.IsLoading = true
	c.state.ErrorMessage = ""
	c.state.Weather = nil
	c.mu.Unlock()
	c.notify()

	snapshot, err := fetch(ctx)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Debug("dropping superseded weather response", zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		c.state.ErrorMessage = errorMessage(err, fallback)
	} else {
		c.state.Weather = &snapshot
	}
	c.state.IsLoading = false
	c.mu.Unlock()
	c.notify()

	if err != nil {
		log.Warn("weather fetch failed", zap.Uint64("seq", seq), zap.Error(err))
		return
	}

	city := forecastCity(snapshot)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.fetchForecast(context.WithoutCancel(ctx), seq, city)
	}()
}

func (c *Coordinator) fetchForecast(ctx context.Context, seq uint64, cityName string) {
	entries, err := c.api.Forecast(ctx, cityName)
	if err != nil {
		log.Error("forecast fetch failed", zap.String("city", cityName), zap.Error(err))
		return
	}

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Debug("dropping superseded forecast response", zap.Uint64("seq", seq))
		return
	}
	c.state.Forecast = append(weather.Forecast(nil), entries...)
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// errorMessage prefers the server's detail over the fallback text.
func errorMessage(err error, fallback string) string {
	var d interface{ Detail() string }
	if errors.As(err, &d) && d.Detail() != "" {
		return d.Detail()
	}
	return fallback
}
