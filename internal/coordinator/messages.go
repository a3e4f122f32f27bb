package coordinator

// Messages holds the user-facing fallback texts shown when the server gives no detail.
type Messages struct {
	WeatherFailed  string
	LocationFailed string
}

var catalog = map[string]Messages{
	"en": {
		WeatherFailed:  "Failed to load weather data.",
		LocationFailed: "Failed to determine weather for your location.",
	},
	"ru": {
		WeatherFailed:  "Не удалось загрузить данные о погоде.",
		LocationFailed: "Ошибка определения местоположения.",
	},
}

// MessagesFor returns the fallback texts for a language, English when unknown.
func MessagesFor(lang string) Messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog["en"]
}
