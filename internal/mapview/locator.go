package mapview

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/domain"
)

// Geolocator is the external positioning collaborator. Locate blocks
// until a fix with at most maxAccuracyM error is available or the
// context expires.
type Geolocator interface {
	Locate(ctx context.Context, maxAccuracyM float64) (domain.Point, float64, error)
}

// Seeding bounds: the first attempt gets 15 s, later attempts get
// longer, and the whole seeding never exceeds 35 s.
const (
	seedFirstTimeout = 15 * time.Second
	seedRetryTimeout = 20 * time.Second
	seedHardCeiling  = 35 * time.Second
	seedRetries      = 2
)

// Accuracy bars per attempt, meters. Each retry relaxes the bar.
var seedAccuracyBars = [seedRetries + 1]float64{100, 500, 2000}

const seedZoom = 14

// ViewportSeeder resolves the initial viewport from the user's
// position, falling back to the last known or a default view rather
// than blocking indefinitely.
type ViewportSeeder struct {
	geo         Geolocator
	logger      *zap.Logger
	defaultView CameraMove
	lastKnown   *CameraMove
}

func NewViewportSeeder(geo Geolocator, logger *zap.Logger, defaultView CameraMove) *ViewportSeeder {
	return &ViewportSeeder{
		geo:         geo,
		logger:      logger,
		defaultView: defaultView,
	}
}

// Seed attempts to locate the user, retrying up to twice with a
// progressively relaxed accuracy bar and escalating timeouts under a
// hard overall ceiling.
func (s *ViewportSeeder) Seed(ctx context.Context) CameraMove {
	ctx, cancel := context.WithTimeout(ctx, seedHardCeiling)
	defer cancel()

	for attempt := 0; attempt <= seedRetries; attempt++ {
		timeout := seedFirstTimeout
		if attempt > 0 {
			timeout = seedRetryTimeout
		}

		attemptCtx, attemptCancel := context.WithTimeout(ctx, timeout)
		point, accuracy, err := s.geo.Locate(attemptCtx, seedAccuracyBars[attempt])
		attemptCancel()

		if err == nil {
			s.logger.Debug("Viewport seeded from geolocation",
				zap.Float64("lat", point.Lat),
				zap.Float64("lon", point.Lon),
				zap.Float64("accuracy_m", accuracy),
				zap.Int("attempt", attempt))
			view := CameraMove{Center: point, Zoom: seedZoom, Animate: false}
			s.lastKnown = &view
			return view
		}

		if ctx.Err() != nil {
			break
		}
		s.logger.Debug("Geolocation attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	if s.lastKnown != nil {
		s.logger.Info("Geolocation unavailable, using last known viewport")
		return *s.lastKnown
	}
	s.logger.Info("Geolocation unavailable, using default viewport")
	return s.defaultView
}
