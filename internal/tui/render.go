package tui

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-lookup/internal/coordinator"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	title           = "Weather"
	loadingText     = "Loading..."
	forecastHeading = "5-day forecast"
	hint            = "enter: search  esc: quit"
)

// Render draws the screen for a coordinator state and the current input text.
func Render(state coordinator.State, input string) string {
	var b strings.Builder
	caser := cases.Title(language.Und)

	b.WriteString(title + "\n\n")

	glyph := "->"
	if state.IsLoading {
		glyph = "..."
	}
	fmt.Fprintf(&b, "[ %s ] %s\n\n", input, glyph)

	if state.IsLoading {
		b.WriteString(loadingText + "\n")
	}
	if state.ErrorMessage != "" {
		b.WriteString(state.ErrorMessage + "\n")
	}

	if w := state.Weather; w != nil {
		fmt.Fprintf(&b, "%s\n", w.CityName)
		fmt.Fprintf(&b, "%d°C\n", weather.DisplayTemperature(w.Temperature))
		fmt.Fprintf(&b, "%s\n", w.IconURL())
		fmt.Fprintf(&b, "%s\n", caser.String(w.Description))
	}

	if len(state.Forecast) > 0 {
		b.WriteString("\n" + forecastHeading + "\n")
		for _, e := range state.Forecast {
			fmt.Fprintf(&b, "%s  %s  %d°C  %s\n",
				e.Date, e.IconURL(), weather.DisplayTemperature(e.Temperature), caser.String(e.Description))
		}
	}

	b.WriteString("\n" + hint + "\n")
	return b.String()
}
