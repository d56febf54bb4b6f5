// handlers_health.go - Health and runtime info handler
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/warehouse-sim/backend/internal/models"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) HealthHandler {
	return &HealthHandlerImpl{
		version:   version,
		startedAt: time.Now(),
	}
}

// HandleHealth reports liveness, uptime, and the fixed warehouse dimensions
// the dashboard needs before it draws the grid.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"version":       h.version,
		"uptimeSeconds": int(time.Since(h.startedAt).Seconds()),
		"grid": map[string]int{
			"aisles": models.MaxAisle,
			"racks":  models.MaxRack,
		},
	})
}
