// handlers_kpi.go - Telemetry KPI handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// KPIHandlerImpl implements the KPIHandler interface
type KPIHandlerImpl struct {
	source KPISource
}

// NewKPIHandler creates a new KPI handler
func NewKPIHandler(source KPISource) KPIHandler {
	return &KPIHandlerImpl{source: source}
}

// HandleKPIs returns the aggregated simulation KPIs
func (h *KPIHandlerImpl) HandleKPIs(c echo.Context) error {
	report, err := h.source.KPIs(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to compute KPIs", err)
	}
	return c.JSON(http.StatusOK, report)
}

// HandleRecentOrders returns the most recent order completions
func (h *KPIHandlerImpl) HandleRecentOrders(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return NewValidationError("limit")
		}
		limit = parsed
	}

	recent, err := h.source.RecentOrders(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to query recent orders", err)
	}
	return c.JSON(http.StatusOK, recent)
}
