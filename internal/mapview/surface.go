// Package mapview implements the marker lifecycle engine of the map
// client: viewport filtering, spatial clustering, frame-sliced marker
// construction, incremental reconciliation and hover/selection
// coordination. The package owns no rendering of its own; it drives an
// external map surface through the Surface contract below.
//
// The engine is single-threaded by design. All of its methods, frame
// callbacks and timer callbacks must run on one goroutine (see Loop);
// logical races between overlapping render passes are prevented with
// generation tokens, not locks.
package mapview

import (
	"time"

	"github.com/fuelmap-service/internal/domain"
)

// SurfaceEvent names the map engine events the core subscribes to.
type SurfaceEvent string

const (
	EventLoad    SurfaceEvent = "load"
	EventMove    SurfaceEvent = "move"
	EventMoveEnd SurfaceEvent = "moveend"
	EventZoomEnd SurfaceEvent = "zoomend"
	EventError   SurfaceEvent = "error"
)

// MarkerKind distinguishes station markers from cluster markers.
type MarkerKind int

const (
	MarkerPoint MarkerKind = iota
	MarkerCluster
)

// MarkerState is the visual selection state of a marker.
type MarkerState int

const (
	StateNormal MarkerState = iota
	StateSelected
)

// Visual constants for the two marker states.
const (
	markerSizeNormal   = 28
	markerSizeSelected = 38
	zIndexNormal       = 1
	zIndexSelected     = 100
)

// MarkerLook describes how the surface should draw a marker.
type MarkerLook struct {
	Kind   MarkerKind
	State  MarkerState
	SizePx int
	ZIndex int
	Bounce bool
	Count  int // contained points, clusters only
	Label  string
}

// PopupContent is the station detail shown in a hover popup.
type PopupContent struct {
	Title    string
	Subtitle string
	Note     string
}

// CameraMove describes an animated (or instant) camera change.
type CameraMove struct {
	Center   domain.Point
	Zoom     float64
	Duration time.Duration
	Animate  bool
}

// PointerHandler receives pointer events from the surface. The
// surface reports marker identifiers, never element handles, so
// dispatch always goes through the engine's marker arena.
type PointerHandler interface {
	PointerEnter(markerID string)
	PointerLeave(markerID string)
	Click(markerID string)
	PopupClosed(markerID string)
}

// Surface is the narrow contract the engine consumes from the map
// rendering library. Implementations must deliver pointer events and
// surface events on the engine's loop goroutine. Surface errors are
// the adapter's concern: the engine assumes calls on a ready surface
// do not fail, and ignores non-fatal engine errors per EventError.
type Surface interface {
	// Ready reports whether the underlying map has finished loading.
	// Every other method may only be called once Ready returns true.
	Ready() bool

	Bounds() domain.BoundingBox
	Zoom() float64
	Center() domain.Point

	// FlyTo starts an animated camera move. Redraw forces a repaint
	// without moving the camera.
	FlyTo(move CameraMove)
	Redraw()

	AddMarker(id string, at domain.Point, look MarkerLook)
	MoveMarker(id string, at domain.Point)
	SetMarkerLook(id string, look MarkerLook)
	PulseMarker(id string, duration time.Duration)
	RemoveMarker(id string)

	// OpenPopup anchors popup content at a coordinate. At most one
	// popup is open at a time; the engine enforces that invariant by
	// closing the previous popup before opening the next.
	OpenPopup(id string, at domain.Point, content PopupContent)
	ClosePopup(id string)

	On(event SurfaceEvent, fn func())
	SetPointerHandler(h PointerHandler)
}

// lookFor computes the marker appearance for a render entry.
func lookFor(kind MarkerKind, selected bool, count int, label string) MarkerLook {
	look := MarkerLook{
		Kind:   kind,
		State:  StateNormal,
		SizePx: markerSizeNormal,
		ZIndex: zIndexNormal,
		Count:  count,
		Label:  label,
	}
	if selected {
		look.State = StateSelected
		look.SizePx = markerSizeSelected
		look.ZIndex = zIndexSelected
		look.Bounce = true
	}
	return look
}
