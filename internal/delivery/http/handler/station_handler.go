package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/pkg/errors"
	"github.com/fuelmap-service/internal/pkg/utils"
	"github.com/fuelmap-service/internal/pkg/validator"
	"github.com/fuelmap-service/internal/usecase"
	"github.com/fuelmap-service/internal/usecase/dto"
)

// StationHandler serves station lookups.
type StationHandler struct {
	stationUsecase usecase.StationUsecase
	logger         *zap.Logger
}

func NewStationHandler(stationUsecase usecase.StationUsecase, logger *zap.Logger) *StationHandler {
	return &StationHandler{
		stationUsecase: stationUsecase,
		logger:         logger,
	}
}

// ListStations returns all stations, or the stations of a city when
// the city query parameter is set.
// GET /api/v1/stations?city=Riyadh
func (h *StationHandler) ListStations(c *fiber.Ctx) error {
	if city := c.Query("city"); city != "" {
		resp, err := h.stationUsecase.StationsByCity(c.Context(), city)
		if err != nil {
			h.logger.Error("Failed to get city stations",
				zap.String("city", city),
				zap.Error(err))
			return utils.SendError(c, err)
		}
		return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
	}

	resp, err := h.stationUsecase.ListStations(c.Context())
	if err != nil {
		h.logger.Error("Failed to list stations", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}

// NearbyStations returns stations within a radius of a point.
// GET /api/v1/stations/nearby?lat=24.7&lon=46.6&radius_km=5
func (h *StationHandler) NearbyStations(c *fiber.Ctx) error {
	var req dto.NearbyStationsRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		}))
	}

	resp, err := h.stationUsecase.Nearby(c.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to search nearby stations",
			zap.Float64("lat", req.Lat),
			zap.Float64("lon", req.Lon),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}
