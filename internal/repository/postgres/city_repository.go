package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/domain/repository"
	"github.com/fuelmap-service/internal/pkg/errors"
)

type cityRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCityRepository(db *DB) repository.CityRepository {
	return &cityRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *cityRepository) GetAll(ctx context.Context) ([]*domain.City, error) {
	query := `
		SELECT id, name, name_en, lat, lon, zoom
		FROM cities
		ORDER BY name
	`

	var cities []*domain.City
	if err := r.db.SelectContext(ctx, &cities, query); err != nil {
		r.logger.Error("Failed to get cities", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return cities, nil
}

func (r *cityRepository) GetByName(ctx context.Context, name string) (*domain.City, error) {
	query := `
		SELECT id, name, name_en, lat, lon, zoom
		FROM cities
		WHERE name = $1 OR name_en = $1
	`

	var city domain.City
	err := r.db.GetContext(ctx, &city, query, name)
	if err == sql.ErrNoRows {
		return nil, errors.ErrCityNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get city", zap.String("name", name), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return &city, nil
}
