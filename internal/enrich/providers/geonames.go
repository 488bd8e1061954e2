package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/map-point-info/internal/enrich"
)

// geonamesTimeLayout is the local wall-clock format of timezoneJSON's "time".
const geonamesTimeLayout = "2006-01-02 15:04"

// GeoNamesResolver implements enrich.TimeResolver with the GeoNames timezone API.
// The upstream already returns local wall-clock time; it is only reformatted here.
type GeoNamesResolver struct {
	name     string
	username string
	format   func(time.Time) string
	baseURL  string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

// NewGeoNamesResolver creates a resolver that renders times with format, the
// viewer locale's formatter. A nil format falls back to time.DateTime.
func NewGeoNamesResolver(client *http.Client, username string, format func(time.Time) string) *GeoNamesResolver {
	if format == nil {
		format = func(t time.Time) string { return t.Format(time.DateTime) }
	}
	return &GeoNamesResolver{
		name:     "geonames",
		username: username,
		format:   format,
		baseURL:  "https://secure.geonames.org",
		client:   client,
		circuit:  newBreaker("geonames"),
	}
}

func (p *GeoNamesResolver) Name() string {
	return p.name
}

func (p *GeoNamesResolver) ResolveTime(ctx context.Context, lat, lng float64) (string, error) {
	if p.username == "" {
		return "", fmt.Errorf("geonames username is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", formatCoord(lat))
		values.Set("lng", formatCoord(lng))
		values.Set("username", p.username)

		u := fmt.Sprintf("%s/timezoneJSON?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		if code := statusCode(err); code != 0 {
			return "", fmt.Errorf("%w: %v", enrich.ErrTime, err)
		}
		return "", fmt.Errorf("geonames: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Time   string `json:"time"`
		Status *struct {
			Message string `json:"message"`
			Value   int    `json:"value"`
		} `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("geonames: decode: %w", err)
	}

	// Quota and credential problems arrive as 200 with a status object.
	if payload.Status != nil {
		return "", fmt.Errorf("%w: geonames status %d: %s", enrich.ErrTime, payload.Status.Value, payload.Status.Message)
	}
	if payload.Time == "" {
		return "", fmt.Errorf("%w: missing time field", enrich.ErrTime)
	}

	ts, err := time.Parse(geonamesTimeLayout, payload.Time)
	if err != nil {
		return "", fmt.Errorf("%w: parse %q: %v", enrich.ErrTime, payload.Time, err)
	}

	return p.format(ts), nil
}
