package enrich

import "context"

// LocationResolver reverse-geocodes a coordinate.
type LocationResolver interface {
	Name() string
	ResolveLocation(ctx context.Context, lat, lng float64) (LocationDetails, error)
}

// CountryResolver fetches country metadata by ISO alpha-2 code.
type CountryResolver interface {
	Name() string
	ResolveCountry(ctx context.Context, countryCode string) (CountryInfo, error)
}

// WeatherResolver fetches current weather for a coordinate.
type WeatherResolver interface {
	Name() string
	ResolveWeather(ctx context.Context, lat, lng float64) (WeatherReport, error)
}

// TimeResolver fetches the local time at a coordinate, already formatted for display.
type TimeResolver interface {
	Name() string
	ResolveTime(ctx context.Context, lat, lng float64) (string, error)
}

// Localizer maps a machine code to a display name, falling back to the code.
type Localizer interface {
	Lookup(code string) string
}

// Presenter is the display surface. Only the Orchestrator calls it.
type Presenter interface {
	SetField(f Field, st FieldState)
}

// Marker is the single pin on the map.
type Marker interface {
	SetLatLng(lat, lng float64)
}

// MapWidget creates the marker on first use.
type MapWidget interface {
	AddMarker(lat, lng float64) Marker
}
