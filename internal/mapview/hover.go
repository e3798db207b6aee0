package mapview

import (
	"time"

	"go.uber.org/zap"
)

// hoverCoordinator manages popup visibility with debounced hover
// intent. Per marker the state machine is
//
//	idle -> hoverPending -> shown -> idle
//
// with leave-before-fire collapsing hoverPending back to idle. At
// most one popup is attached to the surface at any instant, and at
// most one show timer is pending.
type hoverCoordinator struct {
	surface Surface
	timers  TimerFactory
	logger  *zap.Logger
	delay   time.Duration

	pending    Timer
	pendingID  string
	pendingSeq uint64
	seq        uint64
	activeID   string
}

func newHoverCoordinator(surface Surface, timers TimerFactory, logger *zap.Logger, delay time.Duration) *hoverCoordinator {
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}
	return &hoverCoordinator{
		surface: surface,
		timers:  timers,
		logger:  logger,
		delay:   delay,
	}
}

// pointerEnter schedules the marker's popup after the hover delay.
// Any previously pending show is cancelled first, and a popup open
// for a different marker is closed immediately.
func (h *hoverCoordinator) pointerEnter(rec *markerRecord) {
	h.cancelPending()

	if h.activeID != "" && h.activeID != rec.id {
		h.surface.ClosePopup(h.activeID)
		h.activeID = ""
	}
	if h.activeID == rec.id {
		return // already shown
	}

	id := rec.id
	at := rec.position
	content := rec.popup
	h.seq++
	seq := h.seq
	h.pendingID = id
	h.pendingSeq = seq
	h.pending = h.timers.AfterFunc(h.delay, func() {
		// A cancelled timer can still deliver if it fired before
		// Stop. The marker id alone cannot tell such a callback from
		// the live one when the same marker was re-entered, so each
		// schedule carries its own token.
		if h.pendingSeq != seq {
			return
		}
		h.pendingID = ""
		h.pendingSeq = 0
		h.pending = nil
		h.surface.OpenPopup(id, at, content)
		h.activeID = id
	})
}

// pointerLeave cancels a pending show for the marker. An already
// open popup stays open; it closes on the next hover or explicitly.
func (h *hoverCoordinator) pointerLeave(markerID string) {
	if h.pendingID == markerID {
		h.cancelPending()
	}
}

// popupClosed clears the active reference so a later hover on the
// same marker is not treated as a no-op.
func (h *hoverCoordinator) popupClosed(markerID string) {
	if h.activeID == markerID {
		h.activeID = ""
	}
}

// reset cancels the pending timer and closes the active popup. The
// reconciler calls this at the start of every full rebuild.
func (h *hoverCoordinator) reset() {
	h.cancelPending()
	if h.activeID != "" {
		h.surface.ClosePopup(h.activeID)
		h.activeID = ""
	}
}

func (h *hoverCoordinator) cancelPending() {
	if h.pending != nil {
		h.pending.Stop()
		h.pending = nil
	}
	h.pendingID = ""
	h.pendingSeq = 0
}
