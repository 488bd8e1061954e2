package session

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/map-point-info/internal/enrich"
)

// MarkerPosition is where the session's single map pin sits.
type MarkerPosition struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Session is one browser map. It is the Presenter and MapWidget for its own
// Orchestrator and keeps only the current display, never past clicks.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	record   enrich.DisplayRecord
	marker   *MarkerPosition
	lastSeen time.Time
	clicks   uint64

	orch *enrich.Orchestrator
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	ID     string               `json:"id"`
	Clicks uint64               `json:"clicks"`
	Marker *MarkerPosition      `json:"marker,omitempty"`
	Record enrich.DisplayRecord `json:"-"`
}

// SetField implements enrich.Presenter.
func (s *Session) SetField(f enrich.Field, st enrich.FieldState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record[f] = st
}

// AddMarker implements enrich.MapWidget.
func (s *Session) AddMarker(lat, lng float64) enrich.Marker {
	m := &sessionMarker{s: s}
	m.SetLatLng(lat, lng)
	return m
}

type sessionMarker struct {
	s *Session
}

func (m *sessionMarker) SetLatLng(lat, lng float64) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.marker = &MarkerPosition{Lat: lat, Lng: lng}
}

// Click runs the enrichment pipeline for a click on this session's map.
func (s *Session) Click(ctx context.Context, lat, lng float64) enrich.ClickResult {
	s.mu.Lock()
	s.clicks++
	s.mu.Unlock()
	s.touch()

	return s.orch.HandleClick(ctx, lat, lng)
}

// Snapshot copies the current record and marker.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ID:     s.ID,
		Clicks: s.clicks,
		Record: s.record.Clone(),
	}
	if s.marker != nil {
		m := *s.marker
		snap.Marker = &m
	}
	return snap
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
