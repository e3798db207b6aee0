package mapview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/domain"
)

// scriptedGeolocator fails a configured number of attempts before
// returning a fix, recording the accuracy bar of each call.
type scriptedGeolocator struct {
	failures int
	calls    int
	bars     []float64
	point    domain.Point
}

func (g *scriptedGeolocator) Locate(ctx context.Context, maxAccuracyM float64) (domain.Point, float64, error) {
	g.calls++
	g.bars = append(g.bars, maxAccuracyM)
	if g.calls <= g.failures {
		return domain.Point{}, 0, errors.New("no fix")
	}
	return g.point, maxAccuracyM / 2, nil
}

var defaultView = CameraMove{
	Center: domain.Point{Lat: 24.7136, Lon: 46.6753},
	Zoom:   10,
}

func TestSeedFirstAttemptSucceeds(t *testing.T) {
	geo := &scriptedGeolocator{point: domain.Point{Lat: 17.5, Lon: 44.1}}
	seeder := NewViewportSeeder(geo, zap.NewNop(), defaultView)

	view := seeder.Seed(context.Background())

	assert.Equal(t, geo.point, view.Center)
	assert.Equal(t, 1, geo.calls)
}

func TestSeedRetriesRelaxAccuracy(t *testing.T) {
	geo := &scriptedGeolocator{failures: 2, point: domain.Point{Lat: 17.5, Lon: 44.1}}
	seeder := NewViewportSeeder(geo, zap.NewNop(), defaultView)

	view := seeder.Seed(context.Background())

	require.Equal(t, 3, geo.calls, "one initial attempt plus two retries")
	assert.Equal(t, []float64{100, 500, 2000}, geo.bars)
	assert.Equal(t, geo.point, view.Center)
}

func TestSeedFallsBackToDefault(t *testing.T) {
	geo := &scriptedGeolocator{failures: 10}
	seeder := NewViewportSeeder(geo, zap.NewNop(), defaultView)

	view := seeder.Seed(context.Background())

	assert.Equal(t, 3, geo.calls, "retry bound is two")
	assert.Equal(t, defaultView, view)
}

func TestSeedPrefersLastKnownOverDefault(t *testing.T) {
	geo := &scriptedGeolocator{point: domain.Point{Lat: 17.5, Lon: 44.1}}
	seeder := NewViewportSeeder(geo, zap.NewNop(), defaultView)

	first := seeder.Seed(context.Background())
	require.Equal(t, geo.point, first.Center)

	// Subsequent seeding fails entirely: the last fix wins over the
	// configured default.
	geo.calls = 0
	geo.failures = 10
	second := seeder.Seed(context.Background())

	assert.Equal(t, first, second)
}
