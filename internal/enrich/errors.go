package enrich

import "errors"

var (
	// ErrResolution is returned when no country code can be derived for a coordinate.
	ErrResolution = errors.New("location resolution failed")

	// ErrEnrichment is returned when the country-metadata upstream has no record for a code.
	ErrEnrichment = errors.New("country enrichment failed")

	// ErrWeather is returned on an empty or malformed weather payload.
	ErrWeather = errors.New("weather resolution failed")

	// ErrTime is returned when the time upstream answers non-2xx or omits the time field.
	ErrTime = errors.New("local time resolution failed")
)
