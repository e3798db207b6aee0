package mapview

import (
	"fmt"
	"time"

	"github.com/fuelmap-service/internal/domain"
)

// fakeSurface records every call the engine makes, tracks attached
// markers and popups, and lets tests fire surface events by hand.
type fakeSurface struct {
	ready   bool
	bounds  domain.BoundingBox
	zoom    float64
	center  domain.Point
	handler PointerHandler
	events  map[SurfaceEvent][]func()

	markers map[string]MarkerLook
	popups  map[string]PopupContent

	addCount    int
	removeCount int
	lookUpdates int
	popupOpens  []string
	pulses      []string
	flyTos      []CameraMove
	redraws     int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		ready: true,
		bounds: domain.BoundingBox{
			MinLat: -85, MinLon: -180, MaxLat: 85, MaxLon: 180,
		},
		zoom:    17,
		center:  domain.Point{Lat: 24.7136, Lon: 46.6753},
		events:  make(map[SurfaceEvent][]func()),
		markers: make(map[string]MarkerLook),
		popups:  make(map[string]PopupContent),
	}
}

func (f *fakeSurface) Ready() bool                { return f.ready }
func (f *fakeSurface) Bounds() domain.BoundingBox { return f.bounds }
func (f *fakeSurface) Zoom() float64              { return f.zoom }
func (f *fakeSurface) Center() domain.Point       { return f.center }

func (f *fakeSurface) FlyTo(move CameraMove) {
	f.flyTos = append(f.flyTos, move)
	// Simulate the camera arriving immediately.
	f.center = move.Center
	f.zoom = move.Zoom
}

func (f *fakeSurface) Redraw() { f.redraws++ }

func (f *fakeSurface) AddMarker(id string, at domain.Point, look MarkerLook) {
	f.addCount++
	f.markers[id] = look
}

func (f *fakeSurface) MoveMarker(id string, at domain.Point) {}

func (f *fakeSurface) SetMarkerLook(id string, look MarkerLook) {
	f.lookUpdates++
	f.markers[id] = look
}

func (f *fakeSurface) PulseMarker(id string, duration time.Duration) {
	f.pulses = append(f.pulses, id)
}

func (f *fakeSurface) RemoveMarker(id string) {
	f.removeCount++
	delete(f.markers, id)
}

func (f *fakeSurface) OpenPopup(id string, at domain.Point, content PopupContent) {
	f.popups[id] = content
	f.popupOpens = append(f.popupOpens, id)
}

func (f *fakeSurface) ClosePopup(id string) {
	delete(f.popups, id)
}

func (f *fakeSurface) On(event SurfaceEvent, fn func()) {
	f.events[event] = append(f.events[event], fn)
}

func (f *fakeSurface) SetPointerHandler(h PointerHandler) { f.handler = h }

func (f *fakeSurface) fire(event SurfaceEvent) {
	for _, fn := range f.events[event] {
		fn()
	}
}

func (f *fakeSurface) selectedIDs() []string {
	var ids []string
	for id, look := range f.markers {
		if look.State == StateSelected {
			ids = append(ids, id)
		}
	}
	return ids
}

// manualFrames queues frame callbacks until the test drains them.
type manualFrames struct {
	queue []func()
}

func (m *manualFrames) RequestFrame(fn func()) {
	m.queue = append(m.queue, fn)
}

// runAll drains the queue, including frames scheduled while running.
func (m *manualFrames) runAll() {
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
	}
}

// manualTimers collects pending timers; tests fire them explicitly.
type manualTimers struct {
	pending []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fireDetached marks the timer fired without running its callback,
// modeling a callback already queued on the loop when Stop is
// called. The caller delivers it by invoking the returned function.
func (t *manualTimer) fireDetached() func() {
	t.fired = true
	return t.fn
}

func (m *manualTimers) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// fireAll runs every pending timer that was not stopped.
func (m *manualTimers) fireAll() {
	pending := m.pending
	m.pending = nil
	for _, t := range pending {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.fn()
	}
}

func spreadStations(n int) []*domain.Station {
	// A wide grid so no two stations cluster even at low zoom.
	stations := make([]*domain.Station, 0, n)
	for i := 0; i < n; i++ {
		lat := -80.0 + float64(i/360)*0.9
		lon := -179.0 + float64(i%360)*0.9
		stations = append(stations, &domain.Station{
			ID:     fmt.Sprintf("st-%d", i),
			Name:   fmt.Sprintf("Station %d", i),
			Region: "Riyadh",
			Lat:    lat,
			Lon:    lon,
		})
	}
	return stations
}
