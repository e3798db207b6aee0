package mapview

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/cluster"
	"github.com/fuelmap-service/internal/domain"
)

// buildPass constructs markers for the entry list in frame-sliced
// batches. The first batch runs synchronously; every following batch
// yields to the frame scheduler so a large pass never blocks a
// paint. The pass aborts as soon as its generation token goes stale.
func (e *Engine) buildPass(gen uint64, entries []cluster.Entry) {
	entries = e.capPointMarkers(entries)
	e.processBatch(gen, entries, 0)
}

// capPointMarkers enforces the hard cap on point markers per pass.
// Excess points are dropped from rendering only, never from the
// underlying data. Cluster entries are aggregates and do not count
// against the cap.
func (e *Engine) capPointMarkers(entries []cluster.Entry) []cluster.Entry {
	points := 0
	kept := make([]cluster.Entry, 0, len(entries))
	dropped := 0
	for _, entry := range entries {
		if entry.Kind == cluster.KindPoint {
			if points >= e.cfg.MarkerCap {
				dropped++
				continue
			}
			points++
		}
		kept = append(kept, entry)
	}
	if dropped > 0 {
		e.logger.Debug("Marker cap reached, dropping excess points",
			zap.Int("cap", e.cfg.MarkerCap),
			zap.Int("dropped", dropped))
	}
	return kept
}

func (e *Engine) processBatch(gen uint64, entries []cluster.Entry, start int) {
	if gen != e.generation {
		// Superseded by a newer render pass; abandon silently.
		return
	}

	end := start + e.cfg.BatchSize
	if end > len(entries) {
		end = len(entries)
	}
	for _, entry := range entries[start:end] {
		e.addEntry(entry)
	}

	if end < len(entries) {
		e.frames.RequestFrame(func() {
			e.processBatch(gen, entries, end)
		})
	}
}

// addEntry creates one marker record and attaches its visual to the
// surface, threading the current selection through so new markers
// start in the right state.
func (e *Engine) addEntry(entry cluster.Entry) {
	rec := &markerRecord{
		id:       entry.ID,
		position: domain.Point{Lat: entry.Lat, Lon: entry.Lon},
		count:    entry.Count,
	}

	switch entry.Kind {
	case cluster.KindCluster:
		rec.kind = MarkerCluster
		rec.members = entry.Members
	default:
		rec.kind = MarkerPoint
		st, ok := e.stationsByID[entry.ID]
		if !ok {
			return
		}
		rec.popup = popupFor(st)
		rec.selected = entry.ID == e.selectedID
	}

	e.markers[entry.ID] = rec
	e.surface.AddMarker(rec.id, rec.position, lookFor(rec.kind, rec.selected, rec.count, rec.label()))
}

// popupFor renders the station detail shown on hover.
func popupFor(s *domain.Station) PopupContent {
	content := PopupContent{Title: s.Name}
	if s.NameEn != nil && *s.NameEn != "" {
		content.Title = s.Name + " / " + *s.NameEn
	}

	content.Subtitle = s.Region
	if s.SubRegion != nil && *s.SubRegion != "" {
		content.Subtitle = s.Region + " - " + *s.SubRegion
	}

	if s.FuelType != nil && *s.FuelType != "" {
		content.Note = *s.FuelType
	}
	if s.Note != nil && *s.Note != "" {
		if content.Note != "" {
			content.Note += " · "
		}
		content.Note += *s.Note
	}
	return content
}

func clusterLabel(count int) string {
	if count > 99 {
		return "99+"
	}
	return strconv.Itoa(count)
}
