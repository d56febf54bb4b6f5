// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/warehouse-sim/backend/internal/models"
	"github.com/warehouse-sim/backend/internal/sim"
	"github.com/warehouse-sim/backend/internal/telemetry"
)

// SimulationHandler handles simulation control and inspection
type SimulationHandler interface {
	HandleStatus(c echo.Context) error
	HandleStart(c echo.Context) error
	HandlePause(c echo.Context) error
	HandleResume(c echo.Context) error
	HandleReset(c echo.Context) error
	HandleSetSpeed(c echo.Context) error
	HandleRobot(c echo.Context) error
	HandleOrders(c echo.Context) error
	HandleEnqueueOrder(c echo.Context) error
	HandlePlanPreview(c echo.Context) error
}

// TrailHandler handles trail export operations
type TrailHandler interface {
	HandleTrail(c echo.Context) error
	HandleTrailMsgpack(c echo.Context) error
}

// KPIHandler handles telemetry queries
type KPIHandler interface {
	HandleKPIs(c echo.Context) error
	HandleRecentOrders(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SimulationController is the runner surface the handlers need.
// This allows mocking in tests
type SimulationController interface {
	Start()
	Pause()
	Resume()
	Reset()
	SetSpeed(speed float64) error
	Status() sim.Status
	CompletedOrders() []*models.Order
	EnqueueOrder(order *models.Order)
	TrailSnapshot() *models.TrailSnapshot
}

// KPISource is the telemetry surface the handlers need.
type KPISource interface {
	KPIs(ctx context.Context) (*telemetry.KPIReport, error)
	RecentOrders(ctx context.Context, limit int) ([]map[string]any, error)
}
