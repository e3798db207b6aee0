// Package cluster implements a supercluster-style spatial index used
// by the map view to aggregate nearby stations at low zoom levels.
//
// The index is rebuilt whenever the station list identity changes
// (tracked by a version counter) and queried on every map move. A
// query is a pure function of (index state, bbox, zoom): identical
// inputs produce identical entries, including cluster identifiers,
// so callers may re-invoke it on every viewport event.
package cluster

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/fuelmap-service/internal/domain"
)

// Kind distinguishes single points from synthetic cluster entries.
type Kind int

const (
	KindPoint Kind = iota
	KindCluster
)

// Point is one indexed station coordinate.
type Point struct {
	ID  string
	Lat float64
	Lon float64
}

// Entry is a query result: either a single point carrying its station
// identifier, or a cluster carrying a deterministic synthetic
// identifier, a representative coordinate and the contained count.
type Entry struct {
	ID      string
	Kind    Kind
	Lat     float64
	Lon     float64
	Count   int
	Members []string
}

// Options configures the index. Zero values are replaced by the
// defaults used across the application.
type Options struct {
	Radius    float64 // clustering radius in pixels
	MinPoints int     // minimum points to form a cluster
	MaxZoom   int     // clustering disabled above this zoom
	TileSize  float64 // pixel size of one tile at zoom 0
}

const expansionZoomCap = 20

// Index is a spatial index over the current station point set.
// Load replaces the point set; Query never mutates it.
type Index struct {
	mu      sync.RWMutex
	opts    Options
	points  []Point
	version uint64
}

// New creates an empty index.
func New(opts Options) *Index {
	if opts.Radius <= 0 {
		opts.Radius = 60
	}
	if opts.MinPoints <= 0 {
		opts.MinPoints = 3
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = 16
	}
	if opts.TileSize <= 0 {
		opts.TileSize = 512
	}
	return &Index{opts: opts}
}

// Load replaces the indexed point set. Points with invalid
// coordinates are skipped. The version lets callers detect whether a
// rebuild actually happened without deep-comparing inputs.
func (ix *Index) Load(points []Point, version uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if version == ix.version && ix.points != nil {
		return
	}

	kept := make([]Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
			continue
		}
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			continue
		}
		kept = append(kept, p)
	}
	ix.points = kept
	ix.version = version
}

// Version returns the version the index was last loaded with.
func (ix *Index) Version() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.version
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.points)
}

// Query returns the entries visible in the bounding box at the given
// zoom. Above MaxZoom every point is returned individually.
func (ix *Index) Query(box domain.BoundingBox, zoom int) []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if zoom < 0 {
		zoom = 0
	}

	visible := make([]Point, 0, len(ix.points))
	for _, p := range ix.points {
		if box.Contains(domain.Point{Lat: p.Lat, Lon: p.Lon}) {
			visible = append(visible, p)
		}
	}

	if zoom > ix.opts.MaxZoom {
		entries := make([]Entry, 0, len(visible))
		for _, p := range visible {
			entries = append(entries, pointEntry(p))
		}
		return entries
	}

	return ix.clusterAt(visible, zoom)
}

// ExpansionZoom computes the minimum zoom at which the cluster with
// the given members splits into more than one entry, capped at 20.
func (ix *Index) ExpansionZoom(members []string, zoom int) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	wanted := make(map[string]bool, len(members))
	for _, id := range members {
		wanted[id] = true
	}
	pts := make([]Point, 0, len(members))
	for _, p := range ix.points {
		if wanted[p.ID] {
			pts = append(pts, p)
		}
	}
	if len(pts) < 2 {
		return expansionZoomCap
	}

	for z := zoom + 1; z <= expansionZoomCap; z++ {
		if z > ix.opts.MaxZoom || len(ix.clusterAt(pts, z)) > 1 {
			return z
		}
	}
	return expansionZoomCap
}

// clusterAt runs one greedy clustering pass over the given points in
// pixel space at the given zoom. Iteration order is the load order,
// which keeps the result deterministic for identical inputs.
func (ix *Index) clusterAt(points []Point, zoom int) []Entry {
	type projected struct {
		Point
		x, y float64
	}

	proj := make([]projected, len(points))
	for i, p := range points {
		x, y := project(p.Lon, p.Lat, zoom, ix.opts.TileSize)
		proj[i] = projected{Point: p, x: x, y: y}
	}

	radius := ix.opts.Radius
	processed := make(map[string]bool, len(proj))
	var entries []Entry

	for i, p := range proj {
		if processed[p.ID] {
			continue
		}

		var nearby []projected
		for j, other := range proj {
			if i == j || processed[other.ID] {
				continue
			}
			dx := other.x - p.x
			dy := other.y - p.y
			if dx*dx+dy*dy <= radius*radius {
				nearby = append(nearby, other)
			}
		}

		if len(nearby)+1 >= ix.opts.MinPoints {
			group := append(nearby, p)
			var sumX, sumY float64
			members := make([]string, 0, len(group))
			for _, m := range group {
				sumX += m.x
				sumY += m.y
				members = append(members, m.ID)
				processed[m.ID] = true
			}
			sort.Strings(members)
			// Centroid in projected space so dense groups near the
			// poles don't skew toward the equator.
			lon, lat := unproject(sumX/float64(len(group)), sumY/float64(len(group)), zoom, ix.opts.TileSize)
			entries = append(entries, Entry{
				ID:      clusterID(zoom, members),
				Kind:    KindCluster,
				Lat:     lat,
				Lon:     lon,
				Count:   len(group),
				Members: members,
			})
		} else {
			processed[p.ID] = true
			entries = append(entries, pointEntry(p.Point))
		}
	}

	return entries
}

func pointEntry(p Point) Entry {
	return Entry{ID: p.ID, Kind: KindPoint, Lat: p.Lat, Lon: p.Lon, Count: 1}
}

// clusterID derives a stable synthetic identifier from the zoom and
// the smallest member id. Random ids would break query purity.
func clusterID(zoom int, sortedMembers []string) string {
	return fmt.Sprintf("cluster:%d:%s", zoom, sortedMembers[0])
}

// project converts lng/lat to pixel coordinates in web-mercator space
// at the given zoom.
func project(lng, lat float64, zoom int, tileSize float64) (float64, float64) {
	sin := math.Sin(lat * math.Pi / 180)
	x := (lng + 180) / 360
	y := 0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi

	scale := tileSize * math.Pow(2, float64(zoom))
	return x * scale, y * scale
}

// unproject converts pixel coordinates back to lng/lat.
func unproject(x, y float64, zoom int, tileSize float64) (float64, float64) {
	scale := tileSize * math.Pow(2, float64(zoom))
	x /= scale
	y /= scale

	lng := x*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*y))) * 180 / math.Pi
	return lng, lat
}
