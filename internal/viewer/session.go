package viewer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/plat-oq/internal/catalog"
)

// ClickRecord is one recorded feature click, as handed to a ClickRecorder.
type ClickRecord struct {
	Session  string
	Location string
	Values   map[string]any
	At       time.Time
}

// ClickRecorder persists clicks for later analysis.
type ClickRecorder interface {
	RecordClick(ctx context.Context, rec ClickRecord) error
}

// Session is the state of one open viewer page. Every operation holds the
// session lock until it completes, so events of one page apply in order.
type Session struct {
	ID      string
	Created time.Time

	mu      sync.Mutex
	layers  *ActiveLayers
	history *SelectionHistory
	store   *Store
}

// AddLayer puts layer id on the map.
func (s *Session) AddLayer(id string) (Overlay, error) {
	s.mu.Lock()
	ov, err := s.layers.Add(id, s.store.overlay)
	s.mu.Unlock()
	if err != nil {
		return Overlay{}, err
	}
	s.store.publish(Event{Session: s.ID, Resource: "overlays", Action: "added", ID: id})
	return ov, nil
}

// AddLayerByName activates the first layer id published under name.
func (s *Session) AddLayerByName(idx *catalog.Index, name string) (Overlay, error) {
	id, ok := idx.LayerID(name)
	if !ok {
		return Overlay{}, ErrUnknownLayerName
	}
	return s.AddLayer(id)
}

// RemoveLayer takes layer id off the map.
func (s *Session) RemoveLayer(id string) (Overlay, error) {
	s.mu.Lock()
	ov, err := s.layers.Remove(id)
	s.mu.Unlock()
	if err != nil {
		return Overlay{}, err
	}
	s.store.publish(Event{Session: s.ID, Resource: "overlays", Action: "removed", ID: id})
	return ov, nil
}

// RemoveLayerByName deactivates the layer published under name.
func (s *Session) RemoveLayerByName(idx *catalog.Index, name string) (Overlay, error) {
	id, ok := idx.LayerID(name)
	if !ok {
		return Overlay{}, ErrUnknownLayerName
	}
	return s.RemoveLayer(id)
}

// Overlays lists the active overlays in activation order.
func (s *Session) Overlays() []Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.List()
}

// HasLayer reports whether layer id is on the map.
func (s *Session) HasLayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.Has(id)
}

// ClickResult is what the page redraws after a feature click.
type ClickResult struct {
	Location string     `json:"location" doc:"Clicked location"`
	Table    []TableRow `json:"table" doc:"All attributes of the clicked feature"`
	Chart    TrendChart `json:"chart" doc:"Trend chart data"`
}

// RecordClick updates the selection history with a clicked feature and
// returns the redrawn table and chart. The click is forwarded to the
// store's recorder, whose failures are logged only.
func (s *Session) RecordClick(ctx context.Context, props FeatureProperties, keys []string) (ClickResult, error) {
	s.mu.Lock()
	if err := s.history.RecordClick(props, keys); err != nil {
		s.mu.Unlock()
		return ClickResult{}, err
	}
	chart, err := s.history.Chart()
	chosen := s.history.Keys()
	s.mu.Unlock()
	if err != nil {
		return ClickResult{}, err
	}

	location := locationName(props[s.store.locationField])
	values := make(map[string]any, len(chosen))
	for _, k := range chosen {
		values[k] = props[k]
	}
	s.store.record(ctx, ClickRecord{Session: s.ID, Location: location, Values: values, At: time.Now().UTC()})
	s.store.publish(Event{Session: s.ID, Resource: "history", Action: "recorded", ID: location})

	return ClickResult{Location: location, Table: FeatureTable(props), Chart: chart}, nil
}

// Chart returns the current trend chart.
func (s *Session) Chart() (TrendChart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Chart()
}

// History returns copies of the five history buffers: the four attribute
// slots followed by the locations.
func (s *Session) History() (slots [MaxAttributes][]any, locations []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range slots {
		slots[i] = s.history.Slot(i)
	}
	return slots, s.history.Locations()
}

// StoreConfig configures a Store.
type StoreConfig struct {
	Tiles         catalog.Tiles
	LocationField string
	Bus           *EventBus
	Recorder      ClickRecorder
	Logger        *slog.Logger
}

// Store owns every open session.
type Store struct {
	tiles         catalog.Tiles
	locationField string
	bus           *EventBus
	recorder      ClickRecorder
	logger        *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Tiles.Base == "" {
		cfg.Tiles = catalog.NewTiles("")
	}
	if cfg.LocationField == "" {
		cfg.LocationField = DefaultLocationField
	}
	if cfg.Bus == nil {
		cfg.Bus = NewEventBus()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store{
		tiles:         cfg.Tiles,
		locationField: cfg.LocationField,
		bus:           cfg.Bus,
		recorder:      cfg.Recorder,
		logger:        cfg.Logger,
		sessions:      make(map[string]*Session),
	}
}

// Create opens a new session.
func (st *Store) Create() *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		layers:  NewActiveLayers(),
		history: NewSelectionHistory(st.locationField),
		store:   st,
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	st.logger.Debug("session opened", "session", s.ID)
	return s
}

// Get returns the session with id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete closes a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Len returns the number of open sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Bus returns the store's event bus.
func (st *Store) Bus() *EventBus {
	return st.bus
}

// Tiles returns the URL builders used for overlays.
func (st *Store) Tiles() catalog.Tiles {
	return st.tiles
}

func (st *Store) overlay(id string) Overlay {
	return Overlay{
		ID:          id,
		TileURL:     st.tiles.OverlayTemplate(id),
		MetadataURL: st.tiles.MetadataURL(id),
	}
}

func (st *Store) publish(e Event) {
	st.bus.Publish(e)
}

func (st *Store) record(ctx context.Context, rec ClickRecord) {
	if st.recorder == nil {
		return
	}
	if err := st.recorder.RecordClick(ctx, rec); err != nil {
		st.logger.Warn("click not recorded", "session", rec.Session, "error", err)
	}
}
