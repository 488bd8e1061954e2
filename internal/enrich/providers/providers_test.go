package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"github.com/i474232898/map-point-info/internal/enrich"
	"github.com/i474232898/map-point-info/internal/locale"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newTestNominatim(srv *httptest.Server) *NominatimResolver {
	p := NewNominatimResolver(srv.Client(), "map-point-info-test")
	p.baseURL = srv.URL
	p.limiter = rate.NewLimiter(rate.Inf, 1)
	return p
}

func TestNominatimResolveLocation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		want       enrich.LocationDetails
		wantErrIs  error
		wantFailed bool
	}{
		{
			name: "tokyo",
			body: `{"address":{"country_code":"jp","country":"日本","state":"東京都","city":"新宿区"}}`,
			want: enrich.LocationDetails{CountryCode: "JP", CountryName: "日本", Region: "東京都"},
		},
		{
			name: "state wins over city",
			body: `{"address":{"country_code":"us","country":"United States","city":"Austin","state":"Texas"}}`,
			want: enrich.LocationDetails{CountryCode: "US", CountryName: "United States", Region: "Texas"},
		},
		{
			name: "only county",
			body: `{"address":{"country_code":"ie","country":"Éire / Ireland","county":"County Kerry"}}`,
			want: enrich.LocationDetails{CountryCode: "IE", CountryName: "Éire / Ireland", Region: "County Kerry"},
		},
		{
			name: "province before county",
			body: `{"address":{"country_code":"it","country":"Italia","province":"Roma Capitale","county":"X"}}`,
			want: enrich.LocationDetails{CountryCode: "IT", CountryName: "Italia", Region: "Roma Capitale"},
		},
		{
			name: "no region",
			body: `{"address":{"country_code":"va","country":"Città del Vaticano"}}`,
			want: enrich.LocationDetails{CountryCode: "VA", CountryName: "Città del Vaticano"},
		},
		{
			name:       "open sea",
			body:       `{"error":"Unable to geocode"}`,
			wantErrIs:  enrich.ErrResolution,
			wantFailed: true,
		},
		{
			name:       "address without country code",
			body:       `{"address":{"state":"Somewhere"}}`,
			wantErrIs:  enrich.ErrResolution,
			wantFailed: true,
		},
		{
			name:       "malformed json",
			body:       `{"address":`,
			wantFailed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/reverse" {
					t.Errorf("path = %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("format") != "json" || q.Get("lat") != "35.6762" || q.Get("lon") != "139.6503" {
					t.Errorf("query = %s", r.URL.RawQuery)
				}
				if ua := r.Header.Get("User-Agent"); ua != "map-point-info-test" {
					t.Errorf("User-Agent = %q", ua)
				}
				w.Write([]byte(tt.body))
			})

			got, err := newTestNominatim(srv).ResolveLocation(context.Background(), 35.6762, 139.6503)
			if tt.wantFailed {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if tt.wantErrIs != nil && !errors.Is(err, tt.wantErrIs) {
					t.Fatalf("error = %v, want %v", err, tt.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func newTestRestCountries(srv *httptest.Server) *RestCountriesResolver {
	p := NewRestCountriesResolver(srv.Client())
	p.baseURL = srv.URL
	return p
}

func TestRestCountriesResolveCountry(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3.1/alpha/JP" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`[{
			"name": {"common": "Japan"},
			"currencies": {"JPY": {"name": "Japanese yen", "symbol": "¥"}},
			"languages": {"jpn": "Japanese"},
			"flags": {"png": "https://flagcdn.com/w320/jp.png", "svg": "https://flagcdn.com/jp.svg"}
		}]`))
	})

	got, err := newTestRestCountries(srv).ResolveCountry(context.Background(), "JP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := enrich.CountryInfo{
		CurrencyCode:   "JPY",
		CurrencySymbol: "¥",
		LanguageCode:   "Japanese",
		FlagImageURL:   "https://flagcdn.com/w320/jp.png",
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseCountryRecordKeepsDocumentOrder(t *testing.T) {
	rec := []byte(`{
		"currencies": {"CHF": {"symbol": "Fr."}, "EUR": {"symbol": "€"}},
		"languages": {"fra": "French", "gsw": "Swiss German", "ita": "Italian", "roh": "Romansh"},
		"flags": {"png": "https://flagcdn.com/w320/ch.png"}
	}`)

	for i := 0; i < 20; i++ {
		got, err := parseCountryRecord(rec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.CurrencyCode != "CHF" || got.CurrencySymbol != "Fr." || got.LanguageCode != "French" {
			t.Fatalf("got %+v, want first entries CHF/Fr./French", got)
		}
	}
}

func TestParseCountryRecordDegrades(t *testing.T) {
	tests := []struct {
		name string
		rec  string
		want enrich.CountryInfo
	}{
		{
			name: "currency without symbol",
			rec:  `{"currencies":{"XYZ":{"name":"Nothing"}},"languages":{"xyz":"Xyz"},"flags":{"png":"f.png"}}`,
			want: enrich.CountryInfo{CurrencyCode: "XYZ", LanguageCode: "Xyz", FlagImageURL: "f.png"},
		},
		{
			name: "no currencies or languages",
			rec:  `{"flags":{"png":"aq.png"}}`,
			want: enrich.CountryInfo{FlagImageURL: "aq.png"},
		},
		{
			name: "escaped strings",
			rec:  `{"currencies":{"JPY":{"symbol":"\u00a5"}},"languages":{"jpn":"\u65e5\u672c\u8a9e"}}`,
			want: enrich.CountryInfo{CurrencyCode: "JPY", CurrencySymbol: "¥", LanguageCode: "日本語"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCountryRecord([]byte(tt.rec))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRestCountriesNoRecord(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{"status":404,"message":"Not Found"}`},
		{"empty array", http.StatusOK, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := newTestRestCountries(srv).ResolveCountry(context.Background(), "ZZ")
			if !errors.Is(err, enrich.ErrEnrichment) {
				t.Fatalf("error = %v, want ErrEnrichment", err)
			}
		})
	}
}

func TestRestCountriesNotFoundKeepsBreakerClosed(t *testing.T) {
	var hits int
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path == "/v3.1/alpha/JP" {
			w.Write([]byte(`[{"currencies":{"JPY":{"symbol":"¥"}},"languages":{"jpn":"Japanese"},"flags":{"png":"jp.png"}}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	p := newTestRestCountries(srv)
	for i := 0; i < 8; i++ {
		if _, err := p.ResolveCountry(context.Background(), "ZZ"); !errors.Is(err, enrich.ErrEnrichment) {
			t.Fatalf("call %d: error = %v, want ErrEnrichment", i, err)
		}
	}

	got, err := p.ResolveCountry(context.Background(), "JP")
	if err != nil {
		t.Fatalf("lookup after missing records: %v", err)
	}
	if got.CurrencyCode != "JPY" {
		t.Errorf("currency = %q, want JPY", got.CurrencyCode)
	}
	if hits != 9 {
		t.Errorf("hits = %d, want 9", hits)
	}
}

func newTestOpenWeather(srv *httptest.Server) *OpenWeatherResolver {
	p := NewOpenWeatherResolver(srv.Client(), "test-key", "ja")
	p.baseURL = srv.URL
	return p
}

func TestOpenWeatherResolveWeather(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("appid") != "test-key" || q.Get("units") != "metric" || q.Get("lang") != "ja" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if q.Get("lat") != "35.6762" || q.Get("lon") != "139.6503" {
			t.Errorf("coords = %s,%s", q.Get("lat"), q.Get("lon"))
		}
		w.Write([]byte(`{"weather":[{"main":"Clear","description":"晴天"}],"main":{"temp":21.4}}`))
	})

	got, err := newTestOpenWeather(srv).ResolveWeather(context.Background(), 35.6762, 139.6503)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Description != "晴天" || got.TemperatureC != 21.4 {
		t.Errorf("got %+v", got)
	}
}

func TestOpenWeatherErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErrIs error
	}{
		{"server error", http.StatusInternalServerError, `oops`, nil},
		{"empty weather list", http.StatusOK, `{"weather":[],"main":{"temp":1}}`, enrich.ErrWeather},
		{"missing temp", http.StatusOK, `{"weather":[{"description":"rain"}],"main":{}}`, enrich.ErrWeather},
		{"malformed", http.StatusOK, `<html>`, enrich.ErrWeather},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := newTestOpenWeather(srv).ResolveWeather(context.Background(), 1, 2)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErrIs != nil && !errors.Is(err, tt.wantErrIs) {
				t.Errorf("error = %v, want %v", err, tt.wantErrIs)
			}
		})
	}
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherResolver(http.DefaultClient, "", "ja")
	if _, err := p.ResolveWeather(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error without api key")
	}
}

func newTestGeoNames(srv *httptest.Server) *GeoNamesResolver {
	p := NewGeoNamesResolver(srv.Client(), "demo", locale.Japanese.FormatTime)
	p.baseURL = srv.URL
	return p
}

func TestGeoNamesResolveTime(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/timezoneJSON" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("username") != "demo" || q.Get("lat") != "35.6762" || q.Get("lng") != "139.6503" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"time":"2026-10-14 09:05","timezoneId":"Asia/Tokyo","gmtOffset":9}`))
	})

	got, err := newTestGeoNames(srv).ResolveTime(context.Background(), 35.6762, 139.6503)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2026/10/14 9:05:00" {
		t.Errorf("got %q", got)
	}
}

func TestGeoNamesDefaultFormat(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"time":"2026-10-14 09:05"}`))
	})

	p := NewGeoNamesResolver(srv.Client(), "demo", nil)
	p.baseURL = srv.URL

	got, err := p.ResolveTime(context.Background(), 35.6762, 139.6503)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2026-10-14 09:05:00" {
		t.Errorf("got %q", got)
	}
}

func TestGeoNamesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-success status", http.StatusServiceUnavailable, `down`},
		{"missing time", http.StatusOK, `{"timezoneId":"Etc/GMT"}`},
		{"quota status", http.StatusOK, `{"status":{"message":"the daily limit has been exceeded","value":18}}`},
		{"unparsable time", http.StatusOK, `{"time":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := newTestGeoNames(srv).ResolveTime(context.Background(), 0, 0)
			if !errors.Is(err, enrich.ErrTime) {
				t.Fatalf("error = %v, want ErrTime", err)
			}
		})
	}
}

func TestDoRequestSingleAttemptAndBreaker(t *testing.T) {
	var hits int
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	})

	p := newTestOpenWeather(srv)
	for i := 0; i < 5; i++ {
		if _, err := p.ResolveWeather(context.Background(), 0, 0); statusCode(err) != http.StatusBadGateway {
			t.Fatalf("call %d: error = %v, want 502 status error", i, err)
		}
	}
	if hits != 5 {
		t.Fatalf("hits = %d, want one per call", hits)
	}

	// Five consecutive failures open the breaker; the next call fails fast.
	_, err := p.ResolveWeather(context.Background(), 0, 0)
	if !errors.Is(err, errCircuitOpen) {
		t.Fatalf("error = %v, want circuit open", err)
	}
	if hits != 5 {
		t.Errorf("open breaker still reached upstream: hits = %d", hits)
	}
}
