// handlers.go - Simulation control and inspection handlers
package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/warehouse-sim/backend/internal/models"
	"github.com/warehouse-sim/backend/internal/planner"
)

// SimulationHandlerImpl implements the SimulationHandler interface
type SimulationHandlerImpl struct {
	controller SimulationController
	calculator *planner.Calculator
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(controller SimulationController, calc *planner.Calculator) SimulationHandler {
	return &SimulationHandlerImpl{
		controller: controller,
		calculator: calc,
	}
}

// HandleStatus returns the full simulation snapshot
func (h *SimulationHandlerImpl) HandleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.controller.Status())
}

// HandleStart starts (or resumes) the simulation loop
func (h *SimulationHandlerImpl) HandleStart(c echo.Context) error {
	h.controller.Start()
	return c.JSON(http.StatusOK, map[string]string{"status": "started"})
}

// HandlePause suspends stepping between ticks
func (h *SimulationHandlerImpl) HandlePause(c echo.Context) error {
	h.controller.Pause()
	return c.JSON(http.StatusOK, map[string]string{"status": "paused"})
}

// HandleResume continues stepping
func (h *SimulationHandlerImpl) HandleResume(c echo.Context) error {
	h.controller.Resume()
	return c.JSON(http.StatusOK, map[string]string{"status": "resumed"})
}

// HandleReset returns the simulation to its initial state
func (h *SimulationHandlerImpl) HandleReset(c echo.Context) error {
	h.controller.Reset()
	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}

type speedRequest struct {
	Speed float64 `json:"speed"`
}

// HandleSetSpeed adjusts the simulation speed multiplier
func (h *SimulationHandlerImpl) HandleSetSpeed(c echo.Context) error {
	var req speedRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid speed request", err)
	}
	if err := h.controller.SetSpeed(req.Speed); err != nil {
		return NewValidationError("speed")
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "speed": req.Speed})
}

// HandleRobot returns the robot snapshot only
func (h *SimulationHandlerImpl) HandleRobot(c echo.Context) error {
	status := h.controller.Status()
	return c.JSON(http.StatusOK, status.Robot)
}

// HandleOrders returns current and completed orders
func (h *SimulationHandlerImpl) HandleOrders(c echo.Context) error {
	status := h.controller.Status()
	return c.JSON(http.StatusOK, map[string]any{
		"current":   status.CurrentOrder,
		"pending":   status.PendingOrders,
		"completed": h.controller.CompletedOrders(),
	})
}

type enqueueOrderRequest struct {
	Items []string `json:"items"`
}

// HandleEnqueueOrder injects a custom order into the queue
func (h *SimulationHandlerImpl) HandleEnqueueOrder(c echo.Context) error {
	var req enqueueOrderRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid order request", err)
	}
	if len(req.Items) == 0 {
		return NewValidationError("items")
	}

	order := models.NewOrder(uuid.New().String(), req.Items)
	h.controller.EnqueueOrder(order)
	return c.JSON(http.StatusCreated, order)
}

type planPreviewRequest struct {
	Start   models.Coordinate   `json:"start"`
	Targets []models.Coordinate `json:"targets"`
}

// HandlePlanPreview computes a what-if route without touching the robot.
// Plan is a pure function of its inputs, so this is safe while the
// simulation runs.
func (h *SimulationHandlerImpl) HandlePlanPreview(c echo.Context) error {
	var req planPreviewRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid plan request", err)
	}

	path, err := h.calculator.Plan(req.Start, req.Targets)
	if err != nil {
		return NewBadRequestError("planning failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"path":            path,
		"efficiencyScore": planner.EfficiencyScore(path),
		"valid":           h.calculator.Validate(path),
	})
}
