package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/buger/jsonparser"
	"github.com/sony/gobreaker"

	"github.com/i474232898/map-point-info/internal/enrich"
)

// errStop ends a jsonparser.ObjectEach walk after the first entry.
var errStop = errors.New("stop")

// RestCountriesResolver implements enrich.CountryResolver against restcountries.com v3.1.
type RestCountriesResolver struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewRestCountriesResolver(client *http.Client) *RestCountriesResolver {
	return &RestCountriesResolver{
		name:    "restcountries",
		baseURL: "https://restcountries.com",
		client:  client,
		circuit: newBreaker("restcountries", http.StatusNotFound),
	}
}

func (p *RestCountriesResolver) Name() string {
	return p.name
}

func (p *RestCountriesResolver) ResolveCountry(ctx context.Context, countryCode string) (enrich.CountryInfo, error) {
	if countryCode == "" {
		return enrich.CountryInfo{}, fmt.Errorf("%w: empty country code", enrich.ErrEnrichment)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u := fmt.Sprintf("%s/v3.1/alpha/%s", p.baseURL, url.PathEscape(countryCode))
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return enrich.CountryInfo{}, fmt.Errorf("%w: no record for %s", enrich.ErrEnrichment, countryCode)
		}
		return enrich.CountryInfo{}, fmt.Errorf("restcountries %s: %w", countryCode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return enrich.CountryInfo{}, fmt.Errorf("restcountries %s: read body: %w", countryCode, err)
	}

	// The alpha endpoint answers with an array; the first element is the country.
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return enrich.CountryInfo{}, fmt.Errorf("restcountries %s: decode: %w", countryCode, err)
	}
	if len(records) == 0 {
		return enrich.CountryInfo{}, fmt.Errorf("%w: no record for %s", enrich.ErrEnrichment, countryCode)
	}

	return parseCountryRecord(records[0])
}

// parseCountryRecord keeps the first currency and first language in document
// order. encoding/json maps lose key order, so the record is walked with jsonparser.
func parseCountryRecord(rec []byte) (enrich.CountryInfo, error) {
	var info enrich.CountryInfo

	err := jsonparser.ObjectEach(rec, func(key, value []byte, _ jsonparser.ValueType, _ int) error {
		info.CurrencyCode = string(key)
		if sym, err := jsonparser.GetString(value, "symbol"); err == nil {
			info.CurrencySymbol = sym
		}
		return errStop
	}, "currencies")
	if err != nil && !errors.Is(err, errStop) && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return enrich.CountryInfo{}, fmt.Errorf("%w: currencies: %v", enrich.ErrEnrichment, err)
	}

	err = jsonparser.ObjectEach(rec, func(_, value []byte, dt jsonparser.ValueType, _ int) error {
		if dt != jsonparser.String {
			return fmt.Errorf("language value is %s", dt)
		}
		lang, perr := jsonparser.ParseString(value)
		if perr != nil {
			return perr
		}
		info.LanguageCode = lang
		return errStop
	}, "languages")
	if err != nil && !errors.Is(err, errStop) && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return enrich.CountryInfo{}, fmt.Errorf("%w: languages: %v", enrich.ErrEnrichment, err)
	}

	if flag, err := jsonparser.GetString(rec, "flags", "png"); err == nil {
		info.FlagImageURL = flag
	}

	return info, nil
}
