package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/config"
	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/pkg/errors"
	"github.com/fuelmap-service/internal/usecase/dto"
)

func testMapConfig() config.MapConfig {
	return config.MapConfig{
		CityMaxRadiusKm: 50,
		CityResultCap:   500,
	}
}

func testStation(id, region string, lat, lon float64) *domain.Station {
	return &domain.Station{
		ID:     id,
		Name:   "Station " + id,
		Region: region,
		Lat:    lat,
		Lon:    lon,
	}
}

func TestStationsByCityExactRegionMatch(t *testing.T) {
	stationRepo := new(MockStationRepository)
	cityRepo := new(MockCityRepository)
	cacheRepo := new(MockCacheRepository)

	city := &domain.City{ID: 1, Name: "الرياض", NameEn: "Riyadh", Lat: 24.7136, Lon: 46.6753, Zoom: 11}

	cityRepo.On("GetByName", mock.Anything, "Riyadh").Return(city, nil)
	cacheRepo.On("Get", mock.Anything, "stations:city:1").Return(nil, nil)
	stationRepo.On("GetByRegion", mock.Anything, "الرياض").Return([]*domain.Station{
		testStation("st-1", "الرياض", 24.71, 46.67),
		testStation("st-2", "الرياض", 24.72, 46.68),
	}, nil)
	cacheRepo.On("Set", mock.Anything, "stations:city:1", mock.Anything, mock.Anything).Return(nil)

	uc := NewStationUsecase(stationRepo, cityRepo, cacheRepo, time.Minute, testMapConfig(), zap.NewNop())

	resp, err := uc.StationsByCity(context.Background(), "Riyadh")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	stationRepo.AssertNotCalled(t, "GetNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStationsByCityProximityFallback(t *testing.T) {
	stationRepo := new(MockStationRepository)
	cityRepo := new(MockCityRepository)
	cacheRepo := new(MockCacheRepository)

	city := &domain.City{ID: 7, Name: "نجران", NameEn: "Najran", Lat: 17.4917, Lon: 44.1322, Zoom: 12}

	cityRepo.On("GetByName", mock.Anything, "Najran").Return(city, nil)
	cacheRepo.On("Get", mock.Anything, "stations:city:7").Return(nil, nil)
	stationRepo.On("GetByRegion", mock.Anything, "نجران").Return([]*domain.Station{}, nil)
	stationRepo.On("GetByRegion", mock.Anything, "Najran").Return([]*domain.Station{}, nil)
	stationRepo.On("GetNearby", mock.Anything, city.Lat, city.Lon, 50.0, []string(nil), 500).Return([]*domain.Station{
		testStation("st-9", "حي الفهد", 17.50, 44.14),
	}, nil)
	cacheRepo.On("Set", mock.Anything, "stations:city:7", mock.Anything, mock.Anything).Return(nil)

	uc := NewStationUsecase(stationRepo, cityRepo, cacheRepo, time.Minute, testMapConfig(), zap.NewNop())

	resp, err := uc.StationsByCity(context.Background(), "Najran")
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "st-9", resp.Stations[0].ID)
}

func TestStationsByCityUnknownCity(t *testing.T) {
	stationRepo := new(MockStationRepository)
	cityRepo := new(MockCityRepository)
	cacheRepo := new(MockCacheRepository)

	cityRepo.On("GetByName", mock.Anything, "Atlantis").Return(nil, errors.ErrCityNotFound)

	uc := NewStationUsecase(stationRepo, cityRepo, cacheRepo, time.Minute, testMapConfig(), zap.NewNop())

	_, err := uc.StationsByCity(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, errors.ErrCityNotFound)
}

func TestStationsByCityServedFromCache(t *testing.T) {
	stationRepo := new(MockStationRepository)
	cityRepo := new(MockCityRepository)
	cacheRepo := new(MockCacheRepository)

	city := &domain.City{ID: 1, Name: "الرياض", NameEn: "Riyadh", Lat: 24.7136, Lon: 46.6753, Zoom: 11}

	cityRepo.On("GetByName", mock.Anything, "Riyadh").Return(city, nil)
	cacheRepo.On("Get", mock.Anything, "stations:city:1").
		Return([]byte(`{"stations":[{"id":"st-1","name":"Station st-1","region":"الرياض","lat":24.71,"lon":46.67}],"total":1}`), nil)

	uc := NewStationUsecase(stationRepo, cityRepo, cacheRepo, time.Minute, testMapConfig(), zap.NewNop())

	resp, err := uc.StationsByCity(context.Background(), "Riyadh")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	stationRepo.AssertNotCalled(t, "GetByRegion", mock.Anything, mock.Anything)
}

func TestNearbyValidation(t *testing.T) {
	uc := NewStationUsecase(new(MockStationRepository), new(MockCityRepository), new(MockCacheRepository),
		time.Minute, testMapConfig(), zap.NewNop())

	_, err := uc.Nearby(context.Background(), &dto.NearbyStationsRequest{Lat: 95, Lon: 46, RadiusKm: 5})
	assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)

	_, err = uc.Nearby(context.Background(), &dto.NearbyStationsRequest{Lat: 24.7, Lon: 46.6, RadiusKm: 500})
	assert.ErrorIs(t, err, errors.ErrInvalidRadius)
}

func TestNearbyDefaultsLimit(t *testing.T) {
	stationRepo := new(MockStationRepository)

	stationRepo.On("GetNearby", mock.Anything, 24.7, 46.6, 5.0, []string{"diesel"}, 500).
		Return([]*domain.Station{testStation("st-3", "الرياض", 24.71, 46.62)}, nil)

	uc := NewStationUsecase(stationRepo, new(MockCityRepository), new(MockCacheRepository),
		time.Minute, testMapConfig(), zap.NewNop())

	resp, err := uc.Nearby(context.Background(), &dto.NearbyStationsRequest{
		Lat: 24.7, Lon: 46.6, RadiusKm: 5, FuelTypes: []string{"diesel"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	stationRepo.AssertExpectations(t)
}

func TestListStationsCachesResult(t *testing.T) {
	stationRepo := new(MockStationRepository)
	cacheRepo := new(MockCacheRepository)

	cacheRepo.On("Get", mock.Anything, "stations:all").Return(nil, nil)
	stationRepo.On("GetAll", mock.Anything).Return([]*domain.Station{
		testStation("st-1", "الرياض", 24.71, 46.67),
	}, nil)
	cacheRepo.On("Set", mock.Anything, "stations:all", mock.Anything, time.Minute).Return(nil)

	uc := NewStationUsecase(stationRepo, new(MockCityRepository), cacheRepo, time.Minute, testMapConfig(), zap.NewNop())

	resp, err := uc.ListStations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	cacheRepo.AssertExpectations(t)
}
