package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/cluster"
	"github.com/fuelmap-service/internal/config"
	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/domain/repository"
	"github.com/fuelmap-service/internal/pkg/errors"
	"github.com/fuelmap-service/internal/usecase/dto"
)

// ClusterUsecase serves server-side cluster views of the station
// set. The underlying index is rebuilt from the repository whenever
// Refresh is called, so stream-driven updates only need to invalidate.
type ClusterUsecase interface {
	// Clusters returns the cluster view of a bounding box at a zoom
	// level.
	Clusters(ctx context.Context, req *dto.ClustersRequest) (*dto.ClustersResponse, error)

	// Refresh reloads the index from the station repository and
	// bumps the data version so stale cache entries stop matching.
	Refresh(ctx context.Context) error
}

type clusterUsecase struct {
	stationRepo repository.StationRepository
	cacheRepo   repository.CacheRepository
	cacheTTL    time.Duration
	index       *cluster.Index
	version     atomic.Uint64
	logger      *zap.Logger
}

func NewClusterUsecase(
	stationRepo repository.StationRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	mapCfg config.MapConfig,
	logger *zap.Logger,
) ClusterUsecase {
	return &clusterUsecase{
		stationRepo: stationRepo,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
		index: cluster.New(cluster.Options{
			Radius:    mapCfg.ClusterRadiusPx,
			MinPoints: mapCfg.ClusterMinPoints,
			MaxZoom:   mapCfg.ClusterMaxZoom,
		}),
		logger: logger,
	}
}

func (u *clusterUsecase) Refresh(ctx context.Context) error {
	stations, err := u.stationRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	points := make([]cluster.Point, 0, len(stations))
	for _, s := range stations {
		points = append(points, cluster.Point{ID: s.ID, Lat: s.Lat, Lon: s.Lon})
	}

	version := u.version.Add(1)
	u.index.Load(points, version)

	u.logger.Info("Cluster index refreshed",
		zap.Int("stations", len(points)),
		zap.Uint64("version", version))
	return nil
}

func (u *clusterUsecase) Clusters(ctx context.Context, req *dto.ClustersRequest) (*dto.ClustersResponse, error) {
	box := domain.BoundingBox{
		MinLat: req.MinLat,
		MinLon: req.MinLon,
		MaxLat: req.MaxLat,
		MaxLon: req.MaxLon,
	}
	if !box.Valid() {
		return nil, errors.ErrInvalidBoundingBox
	}

	if u.index.Len() == 0 {
		if err := u.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	cacheKey := fmt.Sprintf("clusters:v%d:%d:%.4f:%.4f:%.4f:%.4f",
		u.version.Load(), req.Zoom, box.MinLat, box.MinLon, box.MaxLat, box.MaxLon)

	if cached, err := u.cacheRepo.Get(ctx, cacheKey); err == nil && cached != nil {
		var resp dto.ClustersResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
	}

	entries := u.index.Query(box, req.Zoom)

	resp := &dto.ClustersResponse{
		Entries: make([]dto.ClusterEntryResponse, 0, len(entries)),
		Total:   len(entries),
	}
	for _, e := range entries {
		kind := "point"
		if e.Kind == cluster.KindCluster {
			kind = "cluster"
		}
		resp.Entries = append(resp.Entries, dto.ClusterEntryResponse{
			ID:      e.ID,
			Kind:    kind,
			Lat:     e.Lat,
			Lon:     e.Lon,
			Count:   e.Count,
			Members: e.Members,
		})
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := u.cacheRepo.Set(ctx, cacheKey, data, u.cacheTTL); err != nil {
			u.logger.Warn("Failed to cache clusters", zap.Error(err))
		}
	}

	return resp, nil
}
