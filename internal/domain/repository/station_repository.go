package repository

import (
	"context"

	"github.com/fuelmap-service/internal/domain"
)

// StationRepository provides read access to the station set.
type StationRepository interface {
	// GetAll returns every station, newest first.
	GetAll(ctx context.Context) ([]*domain.Station, error)

	// GetByRegion returns stations whose region label equals the
	// given name in either language.
	GetByRegion(ctx context.Context, name string) ([]*domain.Station, error)

	// GetNearby returns stations within radiusKm of a point, sorted
	// ascending by distance, with DistanceM populated.
	GetNearby(ctx context.Context, lat, lon, radiusKm float64, fuelTypes []string, limit int) ([]*domain.Station, error)

	// GetInBBox returns stations inside a bounding box.
	GetInBBox(ctx context.Context, box domain.BoundingBox, limit int) ([]*domain.Station, error)
}
