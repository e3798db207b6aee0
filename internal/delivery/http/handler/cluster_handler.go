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

// ClusterHandler serves server-side cluster views.
type ClusterHandler struct {
	clusterUsecase usecase.ClusterUsecase
	logger         *zap.Logger
}

func NewClusterHandler(clusterUsecase usecase.ClusterUsecase, logger *zap.Logger) *ClusterHandler {
	return &ClusterHandler{
		clusterUsecase: clusterUsecase,
		logger:         logger,
	}
}

// GetClusters returns the cluster view of a bounding box at a zoom
// level.
// GET /api/v1/stations/clusters?min_lat=24&min_lon=46&max_lat=25&max_lon=47&zoom=10
func (h *ClusterHandler) GetClusters(c *fiber.Ctx) error {
	var req dto.ClustersRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		}))
	}

	resp, err := h.clusterUsecase.Clusters(c.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to build cluster view",
			zap.Int("zoom", req.Zoom),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}
