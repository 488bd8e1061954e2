package enrich

// Coordinate is a clicked map position.
// NormalizedLng is always derived from Lng; Lat is passed through unmodified.
type Coordinate struct {
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	NormalizedLng float64 `json:"normalizedLng"`
}

// NewCoordinate builds a Coordinate, recomputing NormalizedLng from lng.
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{
		Lat:           lat,
		Lng:           lng,
		NormalizedLng: NormalizeLng(lng),
	}
}

// LocationDetails is the reverse-geocoded view of a coordinate.
// Empty strings mean the upstream did not provide the value.
type LocationDetails struct {
	CountryCode string `json:"countryCode,omitempty"` // ISO-3166-1 alpha-2, upper case
	CountryName string `json:"countryName,omitempty"`
	Region      string `json:"region,omitempty"`
}

// CountryInfo holds the country metadata used for display.
// Only the first listed currency and language of a country are kept.
type CountryInfo struct {
	CurrencyCode   string `json:"currencyCode"`
	CurrencySymbol string `json:"currencySymbol"`
	LanguageCode   string `json:"languageCode"`
	FlagImageURL   string `json:"flagImageUrl"`
}

// WeatherReport is the current weather at a coordinate.
type WeatherReport struct {
	Description  string  `json:"description"`
	TemperatureC float64 `json:"temperatureC"`
}

// Field identifies one of the nine display slots.
type Field string

const (
	FieldLat      Field = "lat"
	FieldLng      Field = "lng"
	FieldCountry  Field = "country"
	FieldRegion   Field = "region"
	FieldCurrency Field = "currency"
	FieldLanguage Field = "language"
	FieldFlag     Field = "flag"
	FieldWeather  Field = "weather"
	FieldTime     Field = "time"
)

// Fields lists every display slot in display order.
var Fields = []Field{
	FieldLat,
	FieldLng,
	FieldCountry,
	FieldRegion,
	FieldCurrency,
	FieldLanguage,
	FieldFlag,
	FieldWeather,
	FieldTime,
}

// locationFields are the slots owned by the location/country stage.
var locationFields = []Field{
	FieldCountry,
	FieldRegion,
	FieldCurrency,
	FieldLanguage,
	FieldFlag,
}

// Status is the presentation state of a single field.
type Status string

const (
	StatusUnset    Status = "unset"
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusFailed   Status = "failed"
)

// FieldState is a field's status plus its value when resolved.
type FieldState struct {
	Status Status `json:"state"`
	Value  string `json:"value,omitempty"`
}

func Pending() FieldState { return FieldState{Status: StatusPending} }

func Failed() FieldState { return FieldState{Status: StatusFailed} }

func Resolved(v string) FieldState { return FieldState{Status: StatusResolved, Value: v} }

// DisplayRecord is a snapshot of all nine field states.
type DisplayRecord map[Field]FieldState

// NewDisplayRecord returns a record with every field unset.
func NewDisplayRecord() DisplayRecord {
	rec := make(DisplayRecord, len(Fields))
	for _, f := range Fields {
		rec[f] = FieldState{Status: StatusUnset}
	}
	return rec
}

// Clone returns an independent copy of the record.
func (r DisplayRecord) Clone() DisplayRecord {
	out := make(DisplayRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
