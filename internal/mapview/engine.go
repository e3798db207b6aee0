package mapview

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/cluster"
	"github.com/fuelmap-service/internal/config"
	"github.com/fuelmap-service/internal/domain"
)

// Config carries the engine constants. ConfigFromApp bridges the
// application config; zero values fall back to the same defaults.
type Config struct {
	MarkerCap       int
	BatchSize       int
	HoverDelay      time.Duration
	PulseDuration   time.Duration
	FlyToDuration   time.Duration
	CityMaxRadiusKm float64
	CityResultCap   int
	LowPower        bool
	Cluster         cluster.Options
}

// ConfigFromApp maps the viper-backed application config onto the
// engine config.
func ConfigFromApp(m config.MapConfig, lowPower bool) Config {
	return Config{
		MarkerCap:       m.MarkerCap,
		BatchSize:       m.BuildBatchSize,
		HoverDelay:      m.HoverDelay,
		PulseDuration:   m.PulseDuration,
		FlyToDuration:   m.FlyToDuration,
		CityMaxRadiusKm: m.CityMaxRadiusKm,
		CityResultCap:   m.CityResultCap,
		LowPower:        lowPower,
		Cluster: cluster.Options{
			Radius:    m.ClusterRadiusPx,
			MinPoints: m.ClusterMinPoints,
			MaxZoom:   m.ClusterMaxZoom,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.MarkerCap <= 0 {
		c.MarkerCap = 500
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.HoverDelay <= 0 {
		c.HoverDelay = 50 * time.Millisecond
	}
	if c.PulseDuration <= 0 {
		c.PulseDuration = 300 * time.Millisecond
	}
	if c.FlyToDuration <= 0 {
		c.FlyToDuration = 1000 * time.Millisecond
	}
	if c.CityMaxRadiusKm <= 0 {
		c.CityMaxRadiusKm = 50
	}
	if c.CityResultCap <= 0 {
		c.CityResultCap = 500
	}
}

// markerRecord is the engine-owned handle for one rendered marker.
// Records live in an arena keyed by entry identifier; pointer events
// dispatch through the identifier, never through captured closures.
type markerRecord struct {
	id       string
	kind     MarkerKind
	position domain.Point
	count    int
	members  []string
	selected bool
	popup    PopupContent
}

// Engine is the marker reconciler: the single entry point invoked
// whenever the station set, viewport or selection changes. It owns
// every marker on the surface; nothing else may add or remove them.
type Engine struct {
	surface Surface
	frames  FrameScheduler
	timers  TimerFactory
	logger  *zap.Logger
	cfg     Config

	index  *cluster.Index
	filter *CityFilter
	hover  *hoverCoordinator

	stations     []*domain.Station
	stationsByID map[string]*domain.Station
	stationIDs   IDSet
	listVersion  uint64

	markers    map[string]*markerRecord
	rendered   IDSet
	selectedID string

	// generation tags the current render pass; batch callbacks from
	// superseded passes compare their token and abort silently.
	generation uint64

	onSelect func(*domain.Station)
}

// NewEngine wires the engine to a surface. All callbacks registered
// here fire on the engine loop.
func NewEngine(surface Surface, frames FrameScheduler, timers TimerFactory, logger *zap.Logger, cfg Config) *Engine {
	cfg.applyDefaults()

	e := &Engine{
		surface:      surface,
		frames:       frames,
		timers:       timers,
		logger:       logger,
		cfg:          cfg,
		index:        cluster.New(cfg.Cluster),
		filter:       NewCityFilter(cfg.CityMaxRadiusKm, cfg.CityResultCap),
		hover:        newHoverCoordinator(surface, timers, logger, cfg.HoverDelay),
		stationsByID: make(map[string]*domain.Station),
		stationIDs:   NewIDSet(),
		markers:      make(map[string]*markerRecord),
		rendered:     NewIDSet(),
	}

	surface.SetPointerHandler(e)
	surface.On(EventLoad, e.refresh)
	surface.On(EventMoveEnd, e.refresh)
	surface.On(EventZoomEnd, e.refresh)
	surface.On(EventError, func() {
		// Engine errors for optional resources are the host's
		// problem; the core keeps rendering.
		logger.Debug("Map surface reported an error, ignoring")
	})

	return e
}

// SetOnSelect registers the UI callback invoked when a station
// marker is clicked.
func (e *Engine) SetOnSelect(fn func(*domain.Station)) {
	e.onSelect = fn
}

// UpdateMarkers is the reconciler entry point. Idempotent: calling
// it twice with identical inputs takes the fast path on the second
// call and touches no marker. Safe to call before the surface is
// ready; rendering is deferred until the load event.
func (e *Engine) UpdateMarkers(stations []*domain.Station, selectedID string) {
	e.adoptStations(stations)

	if !e.surface.Ready() {
		e.selectedID = selectedID
		e.logger.Debug("Map surface not ready, deferring render")
		return
	}

	entries := e.index.Query(e.surface.Bounds(), e.currentZoom())
	next := make(IDSet, len(entries))
	for _, entry := range entries {
		next[entry.ID] = struct{}{}
	}

	if next.Equal(e.rendered) {
		e.fastPath(selectedID)
		return
	}
	e.rebuild(entries, next, selectedID)
}

// FocusCity filters the full station list for a city, moves the
// camera and reconciles the markers. stations is the complete set
// from the data collaborator; version identifies that list so the
// per-city cache is dropped when the list is replaced.
func (e *Engine) FocusCity(city *domain.City, stations []*domain.Station, version uint64) []*domain.Station {
	subset := e.filter.Filter(city, stations, version)

	if e.surface.Ready() {
		move := CameraForCity(city, len(subset), e.cfg.LowPower)
		move.Duration = e.cfg.FlyToDuration
		if ShouldSkipMove(e.surface.Center(), e.surface.Zoom(), move) {
			e.surface.Redraw()
		} else {
			e.surface.FlyTo(move)
		}
	}

	e.UpdateMarkers(subset, e.selectedID)
	return subset
}

// VisibleMarkers returns the identifiers of the markers currently
// attached to the surface, sorted. Read-only state for inspection
// and tests.
func (e *Engine) VisibleMarkers() []string {
	ids := make([]string, 0, len(e.markers))
	for id := range e.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectedStation returns the currently selected station id, or "".
func (e *Engine) SelectedStation() string {
	return e.selectedID
}

// adoptStations snapshots the incoming station list and rebuilds the
// clustering index when the identifier set actually changed.
func (e *Engine) adoptStations(stations []*domain.Station) {
	next := make(IDSet, len(stations))
	for _, s := range stations {
		if s.HasValidCoordinates() {
			next[s.ID] = struct{}{}
		}
	}
	if next.Equal(e.stationIDs) {
		return
	}

	e.listVersion++
	e.stations = stations
	e.stationIDs = next
	e.stationsByID = make(map[string]*domain.Station, len(stations))

	points := make([]cluster.Point, 0, len(stations))
	for _, s := range stations {
		if !s.HasValidCoordinates() {
			continue
		}
		e.stationsByID[s.ID] = s
		points = append(points, cluster.Point{ID: s.ID, Lat: s.Lat, Lon: s.Lon})
	}
	e.index.Load(points, e.listVersion)
}

// fastPath updates selection visuals in place without destroying a
// single marker.
func (e *Engine) fastPath(selectedID string) {
	prev := e.selectedID
	e.selectedID = selectedID

	for id, rec := range e.markers {
		sel := rec.kind == MarkerPoint && id == selectedID
		if rec.selected == sel {
			continue
		}
		rec.selected = sel
		e.surface.SetMarkerLook(id, lookFor(rec.kind, sel, rec.count, rec.label()))
	}

	if selectedID != "" && selectedID != prev {
		if st, ok := e.stationsByID[selectedID]; ok {
			e.surface.FlyTo(CameraMove{
				Center:   st.Position(),
				Zoom:     e.surface.Zoom(),
				Duration: e.cfg.FlyToDuration,
				Animate:  true,
			})
		}
	}
}

// rebuild tears everything down and replays the entry list through
// the batched builder under a fresh generation token.
func (e *Engine) rebuild(entries []cluster.Entry, next IDSet, selectedID string) {
	e.generation++
	gen := e.generation

	e.hover.reset()
	for id := range e.markers {
		e.surface.RemoveMarker(id)
	}
	e.markers = make(map[string]*markerRecord, len(entries))
	e.rendered = next
	e.selectedID = selectedID

	e.buildPass(gen, entries)
}

func (e *Engine) refresh() {
	if e.stations == nil {
		return
	}
	e.UpdateMarkers(e.stations, e.selectedID)
}

func (e *Engine) currentZoom() int {
	return int(math.Floor(e.surface.Zoom()))
}

// PointerEnter implements PointerHandler.
func (e *Engine) PointerEnter(markerID string) {
	if rec, ok := e.markers[markerID]; ok {
		e.hover.pointerEnter(rec)
	}
}

// PointerLeave implements PointerHandler.
func (e *Engine) PointerLeave(markerID string) {
	e.hover.pointerLeave(markerID)
}

// Click implements PointerHandler. A cluster click zooms to the
// cluster's expansion level; a station click selects the station and
// plays a short pulse. An open hover popup never suppresses a click.
func (e *Engine) Click(markerID string) {
	rec, ok := e.markers[markerID]
	if !ok {
		return
	}

	if rec.kind == MarkerCluster {
		zoom := e.index.ExpansionZoom(rec.members, e.currentZoom())
		e.surface.FlyTo(CameraMove{
			Center:   rec.position,
			Zoom:     float64(zoom),
			Duration: e.cfg.FlyToDuration,
			Animate:  true,
		})
		return
	}

	st, ok := e.stationsByID[markerID]
	if !ok {
		return
	}
	e.surface.PulseMarker(markerID, e.cfg.PulseDuration)
	if e.onSelect != nil {
		e.onSelect(st)
	}
}

// PopupClosed implements PointerHandler.
func (e *Engine) PopupClosed(markerID string) {
	e.hover.popupClosed(markerID)
}

func (r *markerRecord) label() string {
	if r.kind == MarkerCluster {
		return clusterLabel(r.count)
	}
	return ""
}
