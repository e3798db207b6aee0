package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/domain/repository"
	"github.com/fuelmap-service/internal/usecase/dto"
)

const cityListCacheKey = "cities:all"

// CityUsecase exposes the city registry.
type CityUsecase interface {
	// ListCities returns every registered city.
	ListCities(ctx context.Context) (*dto.CitiesResponse, error)

	// GetCity resolves a city by its Arabic or English name.
	GetCity(ctx context.Context, name string) (*domain.City, error)
}

type cityUsecase struct {
	cityRepo  repository.CityRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewCityUsecase(
	cityRepo repository.CityRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) CityUsecase {
	return &cityUsecase{
		cityRepo:  cityRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func (u *cityUsecase) ListCities(ctx context.Context) (*dto.CitiesResponse, error) {
	if cached, err := u.cacheRepo.Get(ctx, cityListCacheKey); err == nil && cached != nil {
		var resp dto.CitiesResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
		u.logger.Warn("Failed to unmarshal cached cities, refetching")
	}

	cities, err := u.cityRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := dto.NewCitiesResponse(cities)

	if data, err := json.Marshal(resp); err == nil {
		if err := u.cacheRepo.Set(ctx, cityListCacheKey, data, u.cacheTTL); err != nil {
			u.logger.Warn("Failed to cache cities", zap.Error(err))
		}
	}

	return resp, nil
}

func (u *cityUsecase) GetCity(ctx context.Context, name string) (*domain.City, error) {
	return u.cityRepo.GetByName(ctx, name)
}
