package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/pkg/utils"
	"github.com/fuelmap-service/internal/usecase"
)

// CityHandler serves the city registry.
type CityHandler struct {
	cityUsecase usecase.CityUsecase
	logger      *zap.Logger
}

func NewCityHandler(cityUsecase usecase.CityUsecase, logger *zap.Logger) *CityHandler {
	return &CityHandler{
		cityUsecase: cityUsecase,
		logger:      logger,
	}
}

// ListCities returns all registered cities.
// GET /api/v1/cities
func (h *CityHandler) ListCities(c *fiber.Ctx) error {
	resp, err := h.cityUsecase.ListCities(c.Context())
	if err != nil {
		h.logger.Error("Failed to list cities", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}
