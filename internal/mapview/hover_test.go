package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelmap-service/internal/domain"
)

func hoverSetup(t *testing.T) (*Engine, *fakeSurface, *manualFrames, *manualTimers) {
	t.Helper()
	engine, surface, frames, timers := newTestEngine(t)
	engine.UpdateMarkers(spreadStations(5), "")
	frames.runAll()
	require.Len(t, surface.markers, 5)
	return engine, surface, frames, timers
}

func TestHoverShowsPopupAfterDelay(t *testing.T) {
	engine, surface, _, timers := hoverSetup(t)

	engine.PointerEnter("st-1")
	assert.Empty(t, surface.popups, "popup must wait for the hover delay")

	timers.fireAll()

	assert.Equal(t, []string{"st-1"}, surface.popupOpens)
	assert.Contains(t, surface.popups, "st-1")
}

func TestLeaveBeforeDelayCancelsShow(t *testing.T) {
	engine, surface, _, timers := hoverSetup(t)

	engine.PointerEnter("st-1")
	engine.PointerLeave("st-1")
	timers.fireAll()

	assert.Empty(t, surface.popupOpens, "cancelled hover must never show")
}

func TestHoverExclusivityAcrossMarkers(t *testing.T) {
	engine, surface, _, timers := hoverSetup(t)

	// X hovered, then Y before X's delay elapses: X must never show.
	engine.PointerEnter("st-1")
	engine.PointerEnter("st-2")
	timers.fireAll()

	assert.Equal(t, []string{"st-2"}, surface.popupOpens)
	assert.NotContains(t, surface.popups, "st-1")
	assert.Len(t, surface.popups, 1)
}

func TestHoverClosesPreviousPopup(t *testing.T) {
	engine, surface, _, timers := hoverSetup(t)

	engine.PointerEnter("st-1")
	timers.fireAll()
	require.Contains(t, surface.popups, "st-1")

	engine.PointerEnter("st-2")
	assert.NotContains(t, surface.popups, "st-1", "previous popup closes immediately on new hover")
	timers.fireAll()

	assert.Contains(t, surface.popups, "st-2")
	assert.Len(t, surface.popups, 1)
}

func TestPopupCloseUnblocksNextHover(t *testing.T) {
	engine, surface, _, timers := hoverSetup(t)

	engine.PointerEnter("st-1")
	timers.fireAll()
	require.Contains(t, surface.popups, "st-1")

	// Explicit close, then hover the same marker again.
	surface.ClosePopup("st-1")
	engine.PopupClosed("st-1")

	engine.PointerEnter("st-1")
	timers.fireAll()

	assert.Equal(t, []string{"st-1", "st-1"}, surface.popupOpens)
}

func TestClickNotSuppressedByActivePopup(t *testing.T) {
	engine, surface, _, timers := hoverSetup(t)

	engine.PointerEnter("st-1")
	timers.fireAll()
	require.Contains(t, surface.popups, "st-1")

	var clicked string
	engine.SetOnSelect(func(s *domain.Station) { clicked = s.ID })

	engine.Click("st-2")
	assert.Equal(t, "st-2", clicked)
}

func TestRebuildResetsHoverState(t *testing.T) {
	engine, surface, frames, timers := hoverSetup(t)

	engine.PointerEnter("st-1")
	require.NotEmpty(t, timers.pending)

	// A new station set triggers a full rebuild, which must cancel
	// the pending hover and close any open popup.
	engine.UpdateMarkers(spreadStations(8), "")
	frames.runAll()
	timers.fireAll()

	assert.Empty(t, surface.popupOpens)
}

func TestStaleTimerCallbackDoesNotShortCircuitRestartedDelay(t *testing.T) {
	engine, surface, _, timers := hoverSetup(t)

	engine.PointerEnter("st-1")
	require.Len(t, timers.pending, 1)

	// The show timer fires and its callback is queued on the loop,
	// but before delivery the pointer leaves (stopping a timer that
	// already fired) and re-enters the same marker.
	stale := timers.pending[0].fireDetached()
	engine.PointerLeave("st-1")
	engine.PointerEnter("st-1")

	stale()
	assert.Empty(t, surface.popupOpens, "stale callback must not bypass the restarted delay")

	timers.fireAll()
	assert.Equal(t, []string{"st-1"}, surface.popupOpens)
}
