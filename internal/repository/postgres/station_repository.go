package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/domain/repository"
	"github.com/fuelmap-service/internal/pkg/errors"
)

type stationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewStationRepository(db *DB) repository.StationRepository {
	return &stationRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

const stationColumns = `
	id, name, name_en, region, region_en, sub_region,
	lat, lon, fuel_type, note, created_at, updated_at
`

func (r *stationRepository) GetAll(ctx context.Context) ([]*domain.Station, error) {
	query := `
		SELECT ` + stationColumns + `
		FROM stations
		ORDER BY created_at DESC
	`

	var stations []*domain.Station
	if err := r.db.SelectContext(ctx, &stations, query); err != nil {
		r.logger.Error("Failed to get stations", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return stations, nil
}

func (r *stationRepository) GetByRegion(ctx context.Context, name string) ([]*domain.Station, error) {
	query := `
		SELECT ` + stationColumns + `
		FROM stations
		WHERE region = $1 OR region_en = $1
		ORDER BY name
	`

	var stations []*domain.Station
	if err := r.db.SelectContext(ctx, &stations, query, name); err != nil {
		r.logger.Error("Failed to get stations by region",
			zap.String("region", name),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return stations, nil
}

func (r *stationRepository) GetNearby(
	ctx context.Context,
	lat, lon, radiusKm float64,
	fuelTypes []string,
	limit int,
) ([]*domain.Station, error) {
	query := `
		WITH point AS (
			SELECT ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography AS geom
		)
		SELECT
			s.id, s.name, s.name_en, s.region, s.region_en, s.sub_region,
			s.lat, s.lon, s.fuel_type, s.note, s.created_at, s.updated_at,
			ST_Distance(s.geometry::geography, point.geom) AS distance_m
		FROM stations s, point
		WHERE ST_DWithin(s.geometry::geography, point.geom, $3)
		  AND ($4::text[] IS NULL OR s.fuel_type = ANY($4))
		ORDER BY distance_m
		LIMIT $5
	`

	var typesArg interface{}
	if len(fuelTypes) > 0 {
		typesArg = pq.Array(fuelTypes)
	}

	rows, err := r.db.QueryContext(ctx, query, lon, lat, radiusKm*1000, typesArg, limit)
	if err != nil {
		r.logger.Error("Failed to get nearby stations", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	var stations []*domain.Station
	for rows.Next() {
		var s domain.Station
		err := rows.Scan(
			&s.ID, &s.Name, &s.NameEn, &s.Region, &s.RegionEn, &s.SubRegion,
			&s.Lat, &s.Lon, &s.FuelType, &s.Note, &s.CreatedAt, &s.UpdatedAt,
			&s.DistanceM,
		)
		if err != nil {
			r.logger.Error("Failed to scan station", zap.Error(err))
			continue
		}
		stations = append(stations, &s)
	}

	return stations, nil
}

func (r *stationRepository) GetInBBox(
	ctx context.Context,
	box domain.BoundingBox,
	limit int,
) ([]*domain.Station, error) {
	query := `
		SELECT ` + stationColumns + `
		FROM stations
		WHERE lat BETWEEN $1 AND $2
		  AND lon BETWEEN $3 AND $4
		ORDER BY id
		LIMIT $5
	`

	var stations []*domain.Station
	err := r.db.SelectContext(ctx, &stations, query,
		box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, limit)
	if err != nil {
		r.logger.Error("Failed to get stations in bbox", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return stations, nil
}
