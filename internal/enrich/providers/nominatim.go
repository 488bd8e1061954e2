package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/map-point-info/internal/enrich"
)

// NominatimResolver implements enrich.LocationResolver against the
// OpenStreetMap Nominatim reverse-geocoding API.
type NominatimResolver struct {
	name      string
	baseURL   string
	userAgent string
	client    *http.Client
	circuit   *gobreaker.CircuitBreaker
	limiter   *rate.Limiter
}

// NewNominatimResolver creates a resolver. Nominatim's usage policy requires an
// identifying User-Agent and at most one request per second.
func NewNominatimResolver(client *http.Client, userAgent string) *NominatimResolver {
	return &NominatimResolver{
		name:      "nominatim",
		baseURL:   "https://nominatim.openstreetmap.org",
		userAgent: userAgent,
		client:    client,
		circuit:   newBreaker("nominatim"),
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (p *NominatimResolver) Name() string {
	return p.name
}

type nominatimAddress struct {
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	State       string `json:"state"`
	City        string `json:"city"`
	Province    string `json:"province"`
	County      string `json:"county"`
}

// region picks the first non-empty administrative name. Naming granularity
// differs by country, hence the fixed priority state > city > province > county.
func (a nominatimAddress) region() string {
	for _, v := range []string{a.State, a.City, a.Province, a.County} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (p *NominatimResolver) ResolveLocation(ctx context.Context, lat, lng float64) (enrich.LocationDetails, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return enrich.LocationDetails{}, err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "json")
		values.Set("lat", formatCoord(lat))
		values.Set("lon", formatCoord(lng))

		u := fmt.Sprintf("%s/reverse?%s", p.baseURL, values.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", p.userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return enrich.LocationDetails{}, fmt.Errorf("nominatim reverse: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Address *nominatimAddress `json:"address"`
		Error   string            `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return enrich.LocationDetails{}, fmt.Errorf("nominatim reverse: decode: %w", err)
	}

	// Open sea and similar spots come back as {"error": "Unable to geocode"}.
	if payload.Address == nil || payload.Address.CountryCode == "" {
		msg := payload.Error
		if msg == "" {
			msg = "address has no country_code"
		}
		return enrich.LocationDetails{}, fmt.Errorf("%w: %s", enrich.ErrResolution, msg)
	}

	addr := payload.Address
	return enrich.LocationDetails{
		CountryCode: strings.ToUpper(addr.CountryCode),
		CountryName: addr.Country,
		Region:      addr.region(),
	}, nil
}
