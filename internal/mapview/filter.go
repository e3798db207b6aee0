package mapview

import (
	"math"
	"regexp"
	"sort"

	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/pkg/utils"
)

// CityFilter narrows the full station set to the subset shown for a
// selected city: an exact region-label match in either language, or a
// proximity fallback around the city center when no station carries
// the city's region label.
//
// Results are cached per city name for the lifetime of the current
// station list; replacing the list (version bump) drops the cache.
type CityFilter struct {
	maxRadiusKm float64
	resultCap   int

	cache        map[string][]*domain.Station
	cacheVersion uint64
}

func NewCityFilter(maxRadiusKm float64, resultCap int) *CityFilter {
	if maxRadiusKm <= 0 {
		maxRadiusKm = 50
	}
	if resultCap <= 0 {
		resultCap = 500
	}
	return &CityFilter{
		maxRadiusKm: maxRadiusKm,
		resultCap:   resultCap,
		cache:       make(map[string][]*domain.Station),
	}
}

// Filter returns the stations to render for the city. version
// identifies the station list; a new version invalidates the cache.
func (f *CityFilter) Filter(city *domain.City, stations []*domain.Station, version uint64) []*domain.Station {
	if version != f.cacheVersion {
		f.cache = make(map[string][]*domain.Station)
		f.cacheVersion = version
	}
	if cached, ok := f.cache[city.Name]; ok {
		return cached
	}

	result := f.exactMatch(city, stations)
	if len(result) == 0 {
		result = f.nearCenter(city, stations)
	}

	f.cache[city.Name] = result
	return result
}

func (f *CityFilter) exactMatch(city *domain.City, stations []*domain.Station) []*domain.Station {
	var matched []*domain.Station
	for _, s := range stations {
		if !s.HasValidCoordinates() {
			continue
		}
		if s.MatchesRegion(city.Name) || s.MatchesRegion(city.NameEn) {
			matched = append(matched, s)
		}
	}
	return matched
}

// nearCenter is the haversine fallback: stations within maxRadiusKm
// of the city center, ascending by distance, capped at resultCap. A
// cheap bounding-box prefilter rejects most stations before the
// trigonometry runs.
func (f *CityFilter) nearCenter(city *domain.City, stations []*domain.Station) []*domain.Station {
	latDelta := f.maxRadiusKm / 111.0
	lonDelta := latDelta
	if cos := math.Cos(city.Lat * math.Pi / 180); cos > 0.01 {
		lonDelta = latDelta / cos
	}

	type withDistance struct {
		station *domain.Station
		km      float64
	}

	var near []withDistance
	for _, s := range stations {
		if !s.HasValidCoordinates() {
			continue
		}
		if math.Abs(s.Lat-city.Lat) > latDelta || math.Abs(s.Lon-city.Lon) > lonDelta {
			continue
		}
		km := utils.HaversineDistance(city.Lat, city.Lon, s.Lat, s.Lon)
		if km <= f.maxRadiusKm {
			near = append(near, withDistance{station: s, km: km})
		}
	}

	sort.SliceStable(near, func(i, j int) bool {
		return near[i].km < near[j].km
	})

	if len(near) > f.resultCap {
		near = near[:f.resultCap]
	}

	result := make([]*domain.Station, len(near))
	for i, n := range near {
		result[i] = n.station
	}
	return result
}

// Camera tolerance: moves smaller than this are skipped and replaced
// with a plain redraw.
const (
	centerTolerance = 0.01
	zoomTolerance   = 0.5
)

// CameraForCity computes the camera move for a city, adjusting the
// registered zoom by result density and host capability: dense
// results zoom out half a level, sparse results zoom in half a
// level, and low-powered hosts drop one more level (floored at 8).
func CameraForCity(city *domain.City, resultCount int, lowPower bool) CameraMove {
	zoom := city.Zoom
	switch {
	case resultCount > 100:
		zoom -= 0.5
	case resultCount < 10:
		zoom += 0.5
	}
	if lowPower {
		zoom--
		if zoom < 8 {
			zoom = 8
		}
	}
	return CameraMove{
		Center:  city.Center(),
		Zoom:    zoom,
		Animate: true,
	}
}

// ShouldSkipMove reports whether the target viewport is already
// within tolerance of the current one.
func ShouldSkipMove(currentCenter domain.Point, currentZoom float64, target CameraMove) bool {
	return math.Abs(currentCenter.Lat-target.Center.Lat) < centerTolerance &&
		math.Abs(currentCenter.Lon-target.Center.Lon) < centerTolerance &&
		math.Abs(currentZoom-target.Zoom) < zoomTolerance
}

var mobileUA = regexp.MustCompile(`(?i)android|iphone|ipad|ipod|mobile`)

// LowPowerHost applies the low-power heuristic: few logical CPUs or
// a mobile user agent.
func LowPowerHost(logicalCPUs int, userAgent string) bool {
	if logicalCPUs > 0 && logicalCPUs <= 4 {
		return true
	}
	return mobileUA.MatchString(userAgent)
}
