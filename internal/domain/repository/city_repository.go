package repository

import (
	"context"

	"github.com/fuelmap-service/internal/domain"
)

// CityRepository provides the bilingual city registry.
type CityRepository interface {
	// GetAll returns the full registry.
	GetAll(ctx context.Context) ([]*domain.City, error)

	// GetByName looks a city up by name in either language.
	GetByName(ctx context.Context, name string) (*domain.City, error)
}
