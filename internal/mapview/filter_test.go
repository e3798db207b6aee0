package mapview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/pkg/utils"
)

var najran = &domain.City{
	Name:   "نجران",
	NameEn: "Najran",
	Lat:    17.4917,
	Lon:    44.1322,
	Zoom:   12,
}

func TestFilterExactRegionMatch(t *testing.T) {
	f := NewCityFilter(50, 500)

	stations := []*domain.Station{
		{ID: "1", Region: "نجران", Lat: 17.5, Lon: 44.1},
		{ID: "2", Region: "Najran", Lat: 17.6, Lon: 44.2},
		{ID: "3", Region: "Riyadh", Lat: 24.7, Lon: 46.7},
	}

	result := f.Filter(najran, stations, 1)

	require.Len(t, result, 2)
	assert.Equal(t, "1", result[0].ID)
	assert.Equal(t, "2", result[1].ID)
}

func TestFilterProximityFallback(t *testing.T) {
	f := NewCityFilter(50, 500)

	// No station carries the Najran region label: 8 stations lie
	// within 50 km of the city center, 2 beyond.
	var stations []*domain.Station
	for i := 0; i < 8; i++ {
		stations = append(stations, &domain.Station{
			ID:     fmt.Sprintf("near-%d", i),
			Region: "Other",
			Lat:    najran.Lat + float64(i)*0.04,
			Lon:    najran.Lon + float64(i)*0.02,
		})
	}
	stations = append(stations,
		&domain.Station{ID: "far-1", Region: "Other", Lat: najran.Lat + 1.0, Lon: najran.Lon},
		&domain.Station{ID: "far-2", Region: "Other", Lat: najran.Lat, Lon: najran.Lon + 2.0},
	)

	result := f.Filter(najran, stations, 1)

	require.Len(t, result, 8)
	prev := -1.0
	for _, s := range result {
		km := utils.HaversineDistance(najran.Lat, najran.Lon, s.Lat, s.Lon)
		assert.LessOrEqual(t, km, 50.0)
		assert.GreaterOrEqual(t, km, prev, "results must be sorted ascending by distance")
		prev = km
	}
}

func TestFilterProximityCap(t *testing.T) {
	f := NewCityFilter(50, 10)

	var stations []*domain.Station
	for i := 0; i < 30; i++ {
		stations = append(stations, &domain.Station{
			ID:     fmt.Sprintf("s-%d", i),
			Region: "Other",
			Lat:    najran.Lat + float64(i)*0.001,
			Lon:    najran.Lon,
		})
	}

	result := f.Filter(najran, stations, 1)
	assert.Len(t, result, 10)
}

func TestFilterCachePerCityAndVersion(t *testing.T) {
	f := NewCityFilter(50, 500)

	stations := []*domain.Station{
		{ID: "1", Region: "Najran", Lat: 17.5, Lon: 44.1},
	}

	first := f.Filter(najran, stations, 1)
	require.Len(t, first, 1)

	// Same version: the cached result is returned even though the
	// input slice changed identity.
	cached := f.Filter(najran, []*domain.Station{}, 1)
	assert.Len(t, cached, 1)

	// New version: the cache is dropped.
	fresh := f.Filter(najran, []*domain.Station{}, 2)
	assert.Empty(t, fresh)
}

func TestCameraForCityZoomAdjustments(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		lowPower bool
		want     float64
	}{
		{"dense zooms out", 150, false, 11.5},
		{"sparse zooms in", 5, false, 12.5},
		{"normal unchanged", 50, false, 12},
		{"low power drops a level", 50, true, 11},
		{"low power and dense combine", 150, true, 10.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move := CameraForCity(najran, tt.count, tt.lowPower)
			assert.Equal(t, tt.want, move.Zoom)
			assert.Equal(t, najran.Center(), move.Center)
		})
	}
}

func TestCameraForCityLowPowerFloor(t *testing.T) {
	city := &domain.City{Name: "x", NameEn: "x", Lat: 1, Lon: 1, Zoom: 8.5}
	move := CameraForCity(city, 50, true)
	assert.Equal(t, 8.0, move.Zoom)
}

func TestShouldSkipMoveTolerance(t *testing.T) {
	target := CameraMove{Center: domain.Point{Lat: 17.4917, Lon: 44.1322}, Zoom: 12}

	assert.True(t, ShouldSkipMove(domain.Point{Lat: 17.4919, Lon: 44.1320}, 12.2, target))
	assert.False(t, ShouldSkipMove(domain.Point{Lat: 17.6, Lon: 44.1322}, 12, target))
	assert.False(t, ShouldSkipMove(domain.Point{Lat: 17.4917, Lon: 44.1322}, 13, target))
}

func TestLowPowerHost(t *testing.T) {
	assert.True(t, LowPowerHost(4, ""))
	assert.True(t, LowPowerHost(8, "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"))
	assert.False(t, LowPowerHost(8, "Mozilla/5.0 (X11; Linux x86_64)"))
}
