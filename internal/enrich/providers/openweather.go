package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/map-point-info/internal/enrich"
)

// OpenWeatherResolver implements enrich.WeatherResolver for OpenWeatherMap.
type OpenWeatherResolver struct {
	name    string
	apiKey  string
	lang    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherResolver creates a resolver. lang is passed through to the API
// so descriptions come back in the viewer's language.
func NewOpenWeatherResolver(client *http.Client, apiKey, lang string) *OpenWeatherResolver {
	return &OpenWeatherResolver{
		name:    "openweathermap",
		apiKey:  apiKey,
		lang:    lang,
		baseURL: "https://api.openweathermap.org",
		client:  client,
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherResolver) Name() string {
	return p.name
}

func (p *OpenWeatherResolver) ResolveWeather(ctx context.Context, lat, lng float64) (enrich.WeatherReport, error) {
	if p.apiKey == "" {
		return enrich.WeatherReport{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", formatCoord(lat))
		values.Set("lon", formatCoord(lng))
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		if p.lang != "" {
			values.Set("lang", p.lang)
		}

		u := fmt.Sprintf("%s/data/2.5/weather?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return enrich.WeatherReport{}, fmt.Errorf("openweather: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return enrich.WeatherReport{}, fmt.Errorf("%w: decode: %v", enrich.ErrWeather, err)
	}
	if len(payload.Weather) == 0 {
		return enrich.WeatherReport{}, fmt.Errorf("%w: empty weather list", enrich.ErrWeather)
	}
	if payload.Main.Temp == nil {
		return enrich.WeatherReport{}, fmt.Errorf("%w: missing main.temp", enrich.ErrWeather)
	}

	return enrich.WeatherReport{
		Description:  payload.Weather[0].Description,
		TemperatureC: *payload.Main.Temp,
	}, nil
}
