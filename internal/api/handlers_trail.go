// handlers_trail.go - Trail export handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// TrailHandlerImpl implements the TrailHandler interface
type TrailHandlerImpl struct {
	controller SimulationController
}

// NewTrailHandler creates a new trail handler
func NewTrailHandler(controller SimulationController) TrailHandler {
	return &TrailHandlerImpl{controller: controller}
}

// HandleTrail returns the trail snapshot as JSON
func (h *TrailHandlerImpl) HandleTrail(c echo.Context) error {
	return c.JSON(http.StatusOK, h.controller.TrailSnapshot())
}

// HandleTrailMsgpack returns the trail snapshot in MessagePack format for
// high-frequency dashboard polling
func (h *TrailHandlerImpl) HandleTrailMsgpack(c echo.Context) error {
	snapshot := h.controller.TrailSnapshot()

	data, err := msgpack.Marshal(snapshot)
	if err != nil {
		return NewInternalError("failed to encode trail snapshot", err)
	}

	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}
