// handlers_zones.go - Detection zone CRUD handlers
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/eventlog"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/metrics"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/store"
)

// ZoneHandlerImpl implements the ZoneHandler interface
type ZoneHandlerImpl struct {
	zones   store.ZoneStore
	events  *eventlog.DuckStore
	metrics *metrics.Metrics
}

// NewZoneHandler creates a new zone handler instance
func NewZoneHandler(zones store.ZoneStore, events *eventlog.DuckStore, m *metrics.Metrics) ZoneHandler {
	return &ZoneHandlerImpl{zones: zones, events: events, metrics: m}
}

// HandleListZones returns all zones
func (h *ZoneHandlerImpl) HandleListZones(c echo.Context) error {
	zones, err := h.zones.ListZones(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to list zones", err)
	}
	return c.JSON(http.StatusOK, zones)
}

// HandleGetZone returns a single zone by id
func (h *ZoneHandlerImpl) HandleGetZone(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	zone, err := h.zones.GetZone(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("zone", id)
		}
		return NewInternalError("failed to load zone", err)
	}
	return c.JSON(http.StatusOK, zone)
}

// HandleCreateZone creates a zone
func (h *ZoneHandlerImpl) HandleCreateZone(c echo.Context) error {
	var zone models.Zone
	if err := c.Bind(&zone); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	zone.ID = ""
	if err := zone.Validate(); err != nil {
		return NewBadRequestError(err.Error(), nil)
	}

	if err := h.zones.CreateZone(c.Request().Context(), &zone); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return NewConflictError(fmt.Sprintf("zone name %q already in use", zone.Name))
		}
		return NewInternalError("failed to create zone", err)
	}

	h.recordZoneEvent(zone.ID, "zone "+zone.Name+" created")
	return c.JSON(http.StatusCreated, zone)
}

// HandleUpdateZone replaces a zone's definition
func (h *ZoneHandlerImpl) HandleUpdateZone(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var zone models.Zone
	if err := c.Bind(&zone); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	zone.ID = id
	if err := zone.Validate(); err != nil {
		return NewBadRequestError(err.Error(), nil)
	}

	if err := h.zones.UpdateZone(c.Request().Context(), &zone); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return NewNotFoundError("zone", id)
		case errors.Is(err, store.ErrConflict):
			return NewConflictError(fmt.Sprintf("zone name %q already in use", zone.Name))
		default:
			return NewInternalError("failed to update zone", err)
		}
	}

	h.recordZoneEvent(zone.ID, "zone "+zone.Name+" updated")
	return c.JSON(http.StatusOK, zone)
}

// HandleDeleteZone removes a zone
func (h *ZoneHandlerImpl) HandleDeleteZone(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.zones.DeleteZone(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("zone", id)
		}
		return NewInternalError("failed to delete zone", err)
	}

	h.recordZoneEvent(id, "zone deleted")
	return c.NoContent(http.StatusNoContent)
}

// HandleSetZoneActive toggles whether the detector evaluates a zone
func (h *ZoneHandlerImpl) HandleSetZoneActive(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	ctx := c.Request().Context()
	zone, err := h.zones.GetZone(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("zone", id)
		}
		return NewInternalError("failed to load zone", err)
	}

	zone.Active = req.Active
	if err := h.zones.UpdateZone(ctx, zone); err != nil {
		return NewInternalError("failed to update zone", err)
	}

	verb := "deactivated"
	if req.Active {
		verb = "activated"
	}
	h.recordZoneEvent(zone.ID, "zone "+zone.Name+" "+verb)
	return c.JSON(http.StatusOK, zone)
}

func (h *ZoneHandlerImpl) recordZoneEvent(zoneID, message string) {
	if h.events == nil {
		return
	}
	h.events.Append(&models.Event{
		Level:   models.LevelInfo,
		Source:  models.SourceEditor,
		ZoneID:  zoneID,
		Message: message,
	})
	if h.metrics != nil {
		h.metrics.EventsRecorded.Add(1)
	}
}
