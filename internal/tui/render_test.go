package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/weather-lookup/internal/coordinator"
	"github.com/i474232898/weather-lookup/internal/weather"
)

func TestRender(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		out := Render(coordinator.State{QueryCity: "Paris", IsLoading: true}, "Paris")

		if !strings.Contains(out, "[ Paris ] ...") {
			t.Fatalf("expected loading glyph, got:\n%s", out)
		}
		if !strings.Contains(out, "Loading...") {
			t.Fatalf("expected loading text, got:\n%s", out)
		}
	})

	t.Run("weather and forecast", func(t *testing.T) {
		state := coordinator.State{
			QueryCity: "Almaty",
			Weather:   &weather.WeatherSnapshot{CityName: "Almaty", Temperature: 21.4, Description: "clear sky", Icon: "01d"},
			Forecast: weather.Forecast{
				{Date: "2024-05-01", Temperature: 18.5, Description: "light rain", Icon: "10d"},
				{Date: "2024-05-02", Temperature: -0.6, Description: "snow", Icon: "13d"},
			},
		}
		out := Render(state, "Almaty")

		for _, want := range []string{
			"[ Almaty ] ->",
			"Almaty\n21°C\n",
			"https://openweathermap.org/img/wn/01d@2x.png",
			"Clear Sky",
			"5-day forecast",
			"2024-05-01  https://openweathermap.org/img/wn/10d.png  19°C  Light Rain",
			"2024-05-02  https://openweathermap.org/img/wn/13d.png  -1°C  Snow",
		} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Loading...") {
			t.Fatalf("unexpected loading text in:\n%s", out)
		}
		if strings.Index(out, "2024-05-01") > strings.Index(out, "2024-05-02") {
			t.Fatalf("forecast out of order:\n%s", out)
		}
	})

	t.Run("error without weather", func(t *testing.T) {
		out := Render(coordinator.State{ErrorMessage: "City not found"}, "Atlantis")

		if !strings.Contains(out, "City not found") {
			t.Fatalf("expected error text, got:\n%s", out)
		}
		if strings.Contains(out, "°C") || strings.Contains(out, "5-day forecast") {
			t.Fatalf("expected no weather block, got:\n%s", out)
		}
	})
}

type stubAPI struct{}

func (stubAPI) WeatherByCity(_ context.Context, city string) (weather.WeatherSnapshot, error) {
	return weather.WeatherSnapshot{CityName: city}, nil
}

func (stubAPI) WeatherByCoordinates(context.Context, float64, float64) (weather.WeatherSnapshot, error) {
	return weather.WeatherSnapshot{}, nil
}

func (stubAPI) Forecast(context.Context, string) (weather.Forecast, error) {
	return nil, nil
}

func TestModelUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("typing updates the query city", func(t *testing.T) {
		coord := coordinator.New(stubAPI{})
		var m tea.Model = New(ctx, coord)

		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i")})

		if got := coord.State().QueryCity; got != "Almati" {
			t.Fatalf("expected query city Almati, got %q", got)
		}
		if !strings.Contains(m.View(), "[ Almati ]") {
			t.Fatalf("expected input in view:\n%s", m.View())
		}
	})

	t.Run("enter is ignored while loading", func(t *testing.T) {
		m := New(ctx, coordinator.New(stubAPI{}))
		m.state.IsLoading = true

		if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
			t.Fatalf("expected no command while loading")
		}
	})

	t.Run("enter submits the input", func(t *testing.T) {
		coord := coordinator.New(stubAPI{})
		m := New(ctx, coord)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatalf("expected submit command")
		}
		cmd()
		coord.Wait()

		if w := coord.State().Weather; w == nil || w.CityName != "Almaty" {
			t.Fatalf("expected Almaty weather, got %+v", w)
		}
	})

	t.Run("escape quits", func(t *testing.T) {
		m := New(ctx, coordinator.New(stubAPI{}))

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if cmd == nil {
			t.Fatalf("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected quit message")
		}
	})
}
