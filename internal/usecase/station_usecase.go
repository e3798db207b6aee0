package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/config"
	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/domain/repository"
	"github.com/fuelmap-service/internal/pkg/errors"
	"github.com/fuelmap-service/internal/pkg/utils"
	"github.com/fuelmap-service/internal/usecase/dto"
)

const stationListCacheKey = "stations:all"

// StationUsecase exposes station lookups.
type StationUsecase interface {
	// ListStations returns every station.
	ListStations(ctx context.Context) (*dto.StationsResponse, error)

	// StationsByCity returns stations whose region matches the city
	// name exactly, falling back to a proximity search around the
	// city center when no region matches.
	StationsByCity(ctx context.Context, cityName string) (*dto.StationsResponse, error)

	// Nearby returns stations within a radius of a point, nearest
	// first, optionally filtered by fuel type.
	Nearby(ctx context.Context, req *dto.NearbyStationsRequest) (*dto.StationsResponse, error)

	// InvalidateCaches drops the cached station list after the
	// station set changes. Per-city lists are left to expire by TTL.
	InvalidateCaches(ctx context.Context) error
}

type stationUsecase struct {
	stationRepo repository.StationRepository
	cityRepo    repository.CityRepository
	cacheRepo   repository.CacheRepository
	cacheTTL    time.Duration
	mapCfg      config.MapConfig
	logger      *zap.Logger
}

func NewStationUsecase(
	stationRepo repository.StationRepository,
	cityRepo repository.CityRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	mapCfg config.MapConfig,
	logger *zap.Logger,
) StationUsecase {
	return &stationUsecase{
		stationRepo: stationRepo,
		cityRepo:    cityRepo,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
		mapCfg:      mapCfg,
		logger:      logger,
	}
}

func (u *stationUsecase) ListStations(ctx context.Context) (*dto.StationsResponse, error) {
	if cached, err := u.cacheRepo.Get(ctx, stationListCacheKey); err == nil && cached != nil {
		var resp dto.StationsResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
		u.logger.Warn("Failed to unmarshal cached stations, refetching")
	}

	stations, err := u.stationRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := dto.NewStationsResponse(stations)

	if data, err := json.Marshal(resp); err == nil {
		if err := u.cacheRepo.Set(ctx, stationListCacheKey, data, u.cacheTTL); err != nil {
			u.logger.Warn("Failed to cache stations", zap.Error(err))
		}
	}

	return resp, nil
}

func (u *stationUsecase) StationsByCity(ctx context.Context, cityName string) (*dto.StationsResponse, error) {
	city, err := u.cityRepo.GetByName(ctx, cityName)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("stations:city:%d", city.ID)
	if cached, err := u.cacheRepo.Get(ctx, cacheKey); err == nil && cached != nil {
		var resp dto.StationsResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
	}

	stations, err := u.stationRepo.GetByRegion(ctx, city.Name)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 && city.NameEn != city.Name {
		stations, err = u.stationRepo.GetByRegion(ctx, city.NameEn)
		if err != nil {
			return nil, err
		}
	}

	// No region carries the city name, so fall back to distance from
	// the city center.
	if len(stations) == 0 {
		stations, err = u.nearCityCenter(ctx, city)
		if err != nil {
			return nil, err
		}
	}

	resp := dto.NewStationsResponse(stations)

	if data, err := json.Marshal(resp); err == nil {
		if err := u.cacheRepo.Set(ctx, cacheKey, data, u.cacheTTL); err != nil {
			u.logger.Warn("Failed to cache city stations",
				zap.String("city", cityName),
				zap.Error(err))
		}
	}

	return resp, nil
}

func (u *stationUsecase) nearCityCenter(ctx context.Context, city *domain.City) ([]*domain.Station, error) {
	// GetNearby already sorts nearest first and applies the cap.
	return u.stationRepo.GetNearby(ctx,
		city.Lat, city.Lon, u.mapCfg.CityMaxRadiusKm, nil, u.mapCfg.CityResultCap)
}

func (u *stationUsecase) InvalidateCaches(ctx context.Context) error {
	return u.cacheRepo.Delete(ctx, stationListCacheKey)
}

func (u *stationUsecase) Nearby(ctx context.Context, req *dto.NearbyStationsRequest) (*dto.StationsResponse, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(req.RadiusKm) {
		return nil, errors.ErrInvalidRadius
	}

	limit := req.Limit
	if limit <= 0 || limit > u.mapCfg.CityResultCap {
		limit = u.mapCfg.CityResultCap
	}

	stations, err := u.stationRepo.GetNearby(ctx, req.Lat, req.Lon, req.RadiusKm, req.FuelTypes, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewStationsResponse(stations), nil
}
