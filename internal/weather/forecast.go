package weather

import "strings"

const noonSuffix = "12:00:00"

// DailyAtNoon reduces 3-hourly readings to one entry per day by keeping the
// 12:00:00 reading. Input order is preserved.
func DailyAtNoon(readings []ForecastReading) Forecast {
	forecast := make(Forecast, 0, len(readings)/8+1)
	for _, r := range readings {
		if !strings.HasSuffix(r.Label, noonSuffix) {
			continue
		}
		date, _, _ := strings.Cut(r.Label, " ")
		forecast = append(forecast, ForecastEntry{
			Date:        date,
			Temperature: r.Temperature,
			Description: r.Description,
			Icon:        r.Icon,
		})
	}
	return forecast
}
