// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/stream"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	source  *stream.Source
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, source *stream.Source) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		source:  source,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	detector := "disconnected"
	if h.source != nil && h.source.Connected() {
		detector = "connected"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"detector": detector,
	})
}
