package enrich

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// Stage names a failure domain of the click pipeline.
type Stage string

const (
	StageLocation Stage = "location"
	StageWeather  Stage = "weather"
	StageTime     Stage = "time"
)

// Resolvers bundles the four upstream ports.
type Resolvers struct {
	Location LocationResolver
	Country  CountryResolver
	Weather  WeatherResolver
	Time     TimeResolver
}

// Tables holds the read-only localization lookups.
type Tables struct {
	Currency Localizer
	Language Localizer
}

// StageError records a failure contained within one stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e StageError) Unwrap() error { return e.Err }

// ClickResult summarises one HandleClick run.
type ClickResult struct {
	Seq        uint64
	Coordinate Coordinate
	Errors     []StageError
}

// Failed reports whether the given stage failed.
func (r ClickResult) Failed(s Stage) bool {
	for _, e := range r.Errors {
		if e.Stage == s {
			return true
		}
	}
	return false
}

// Orchestrator handles map clicks for one map session. It owns the marker and
// is the only component that writes to the Presenter.
type Orchestrator struct {
	resolvers Resolvers
	tables    Tables
	presenter Presenter
	widget    MapWidget
	label     string

	mu     sync.Mutex
	marker Marker

	seq atomic.Uint64
}

// NewOrchestrator creates an Orchestrator. label only appears in log lines.
func NewOrchestrator(res Resolvers, tables Tables, presenter Presenter, widget MapWidget, label string) *Orchestrator {
	return &Orchestrator{
		resolvers: res,
		tables:    tables,
		presenter: presenter,
		widget:    widget,
		label:     label,
	}
}

// HandleClick runs the enrichment pipeline for a click at (lat, lng).
//
// Stages run in a fixed order: location+country, then weather, then time.
// A failure in one stage only marks that stage's fields as failed. Overlapping
// calls are not serialised; whichever finishes last wins per field.
func (o *Orchestrator) HandleClick(ctx context.Context, lat, lng float64) ClickResult {
	seq := o.seq.Add(1)
	coord := NewCoordinate(lat, lng)
	res := ClickResult{Seq: seq, Coordinate: coord}

	o.placeMarker(lat, lng)

	for _, f := range Fields {
		o.presenter.SetField(f, Pending())
	}
	o.presenter.SetField(FieldLat, Resolved(FormatDegrees(coord.Lat)))
	o.presenter.SetField(FieldLng, Resolved(FormatDegrees(coord.NormalizedLng)))

	if err := o.setLocationInfo(ctx, coord); err != nil {
		o.fail(&res, StageLocation, err, locationFields...)
	}
	if err := o.setWeather(ctx, coord); err != nil {
		o.fail(&res, StageWeather, err, FieldWeather)
	}
	if err := o.setLocalTime(ctx, coord); err != nil {
		o.fail(&res, StageTime, err, FieldTime)
	}

	return res
}

// placeMarker moves the marker to the raw clicked position, creating it on first use.
func (o *Orchestrator) placeMarker(lat, lng float64) {
	if o.widget == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.marker != nil {
		o.marker.SetLatLng(lat, lng)
		return
	}
	o.marker = o.widget.AddMarker(lat, lng)
}

func (o *Orchestrator) setLocationInfo(ctx context.Context, c Coordinate) error {
	loc, err := o.resolvers.Location.ResolveLocation(ctx, c.Lat, c.NormalizedLng)
	if err != nil {
		return err
	}
	if loc.CountryCode == "" {
		return fmt.Errorf("%w: no country code at %s,%s", ErrResolution, FormatDegrees(c.Lat), FormatDegrees(c.NormalizedLng))
	}

	info, err := o.resolvers.Country.ResolveCountry(ctx, loc.CountryCode)
	if err != nil {
		return err
	}

	o.presenter.SetField(FieldCountry, Resolved(loc.CountryName))
	o.presenter.SetField(FieldRegion, Resolved(loc.Region))
	o.presenter.SetField(FieldCurrency, Resolved(FormatCurrency(o.tables.Currency, info.CurrencyCode, info.CurrencySymbol)))
	o.presenter.SetField(FieldLanguage, Resolved(FormatLanguage(o.tables.Language, info.LanguageCode)))
	o.presenter.SetField(FieldFlag, Resolved(info.FlagImageURL))
	return nil
}

func (o *Orchestrator) setWeather(ctx context.Context, c Coordinate) error {
	w, err := o.resolvers.Weather.ResolveWeather(ctx, c.Lat, c.NormalizedLng)
	if err != nil {
		return err
	}
	o.presenter.SetField(FieldWeather, Resolved(FormatWeather(w)))
	return nil
}

func (o *Orchestrator) setLocalTime(ctx context.Context, c Coordinate) error {
	t, err := o.resolvers.Time.ResolveTime(ctx, c.Lat, c.NormalizedLng)
	if err != nil {
		return err
	}
	o.presenter.SetField(FieldTime, Resolved(t))
	return nil
}

func (o *Orchestrator) fail(res *ClickResult, stage Stage, err error, fields ...Field) {
	for _, f := range fields {
		o.presenter.SetField(f, Failed())
	}
	res.Errors = append(res.Errors, StageError{Stage: stage, Err: err})
	log.Printf("ERROR: session %s click #%d stage %s failed: %v", o.label, res.Seq, stage, err)
}
