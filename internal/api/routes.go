// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/warehouse-sim/backend/internal/planner"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Controller SimulationController
	Calculator *planner.Calculator
	KPIs       KPISource
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health     HealthHandler
	Simulation SimulationHandler
	Trail      TrailHandler
	KPI        KPIHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(deps.Version),
		Simulation: NewSimulationHandler(deps.Controller, deps.Calculator),
		Trail:      NewTrailHandler(deps.Controller),
		KPI:        NewKPIHandler(deps.KPIs),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Simulation control and inspection
	simGroup := e.Group("/api/simulation")
	simGroup.GET("/status", handlers.Simulation.HandleStatus)
	simGroup.POST("/start", handlers.Simulation.HandleStart)
	simGroup.POST("/pause", handlers.Simulation.HandlePause)
	simGroup.POST("/resume", handlers.Simulation.HandleResume)
	simGroup.POST("/reset", handlers.Simulation.HandleReset)
	simGroup.POST("/speed", handlers.Simulation.HandleSetSpeed)
	simGroup.GET("/robot", handlers.Simulation.HandleRobot)
	simGroup.GET("/orders", handlers.Simulation.HandleOrders)
	simGroup.POST("/orders", handlers.Simulation.HandleEnqueueOrder)
	simGroup.POST("/plan", handlers.Simulation.HandlePlanPreview)

	// Trail export
	trailGroup := e.Group("/api/trail")
	trailGroup.GET("", handlers.Trail.HandleTrail)
	trailGroup.GET("/msgpack", handlers.Trail.HandleTrailMsgpack)

	// Telemetry KPIs
	kpiGroup := e.Group("/api/kpi")
	kpiGroup.GET("", handlers.KPI.HandleKPIs)
	kpiGroup.GET("/orders/recent", handlers.KPI.HandleRecentOrders)
}
