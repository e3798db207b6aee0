package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/config"
	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/mapview"
	"github.com/fuelmap-service/internal/pkg/utils"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates an IP positioning client for viewport seeding.
func NewClient(cfg *config.GeoIPConfig, logger *zap.Logger) mapview.Geolocator {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

type locateResponse struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	AccuracyM float64 `json:"accuracy_m"`
}

// Locate asks the positioning service for the caller's coordinate.
// Fails when the fix is coarser than maxAccuracyM so the seeder can
// retry with a relaxed bar.
func (c *client) Locate(ctx context.Context, maxAccuracyM float64) (domain.Point, float64, error) {
	url := fmt.Sprintf("%s/v1/locate", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Point{}, 0, fmt.Errorf("failed to create locate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Point{}, 0, fmt.Errorf("locate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Positioning service returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return domain.Point{}, 0, fmt.Errorf("positioning service returned status %d", resp.StatusCode)
	}

	var loc locateResponse
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return domain.Point{}, 0, fmt.Errorf("failed to decode locate response: %w", err)
	}

	if !utils.ValidateCoordinates(loc.Lat, loc.Lon) {
		return domain.Point{}, 0, fmt.Errorf("positioning service returned invalid coordinates")
	}

	if loc.AccuracyM > maxAccuracyM {
		return domain.Point{}, loc.AccuracyM,
			fmt.Errorf("fix accuracy %.0fm exceeds required %.0fm", loc.AccuracyM, maxAccuracyM)
	}

	return domain.Point{Lat: loc.Lat, Lon: loc.Lon}, loc.AccuracyM, nil
}
