package weather

import "testing"

func TestDailyAtNoon(t *testing.T) {
	readings := []ForecastReading{
		{Label: "2024-05-01 09:00:00", Temperature: 10, Description: "haze", Icon: "50d"},
		{Label: "2024-05-01 12:00:00", Temperature: 12.5, Description: "clear sky", Icon: "01d"},
		{Label: "2024-05-02 12:00:00", Temperature: 14, Description: "rain", Icon: "10d"},
		{Label: "2024-05-02 15:00:00", Temperature: 15, Description: "rain", Icon: "10d"},
	}

	got := DailyAtNoon(readings)

	want := Forecast{
		{Date: "2024-05-01", Temperature: 12.5, Description: "clear sky", Icon: "01d"},
		{Date: "2024-05-02", Temperature: 14, Description: "rain", Icon: "10d"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	if empty := DailyAtNoon(nil); len(empty) != 0 {
		t.Fatalf("expected no entries, got %+v", empty)
	}
}

func TestDisplayTemperature(t *testing.T) {
	cases := map[float64]int{
		21.4:  21,
		21.5:  22,
		-0.4:  0,
		-0.5:  0,
		-0.6:  -1,
		-12.5: -12,
	}
	for in, want := range cases {
		if got := DisplayTemperature(in); got != want {
			t.Errorf("DisplayTemperature(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestIconURLs(t *testing.T) {
	if got := (WeatherSnapshot{Icon: "01d"}).IconURL(); got != "https://openweathermap.org/img/wn/01d@2x.png" {
		t.Fatalf("unexpected current icon url %s", got)
	}
	if got := (ForecastEntry{Icon: "10n"}).IconURL(); got != "https://openweathermap.org/img/wn/10n.png" {
		t.Fatalf("unexpected forecast icon url %s", got)
	}
}

func TestCoordinatesValidate(t *testing.T) {
	if err := (Coordinates{Lat: 43.25, Lon: 76.95}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range []Coordinates{{Lat: 90.1}, {Lat: -90.1}, {Lon: 180.5}, {Lon: -181}} {
		if err := c.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", c)
		}
	}
}
