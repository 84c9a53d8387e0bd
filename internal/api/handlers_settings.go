// handlers_settings.go - Detector settings handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/eventlog"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/store"
)

// SettingsHandlerImpl implements the SettingsHandler interface
type SettingsHandlerImpl struct {
	settings store.SettingsStore
	events   *eventlog.DuckStore
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(settings store.SettingsStore, events *eventlog.DuckStore) SettingsHandler {
	return &SettingsHandlerImpl{settings: settings, events: events}
}

// HandleGetSettings returns the active detector settings
func (h *SettingsHandlerImpl) HandleGetSettings(c echo.Context) error {
	settings, err := h.settings.GetSettings(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to load settings", err)
	}
	return c.JSON(http.StatusOK, settings)
}

// HandleUpdateSettings validates and persists new detector settings
func (h *SettingsHandlerImpl) HandleUpdateSettings(c echo.Context) error {
	var settings models.Settings
	if err := c.Bind(&settings); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := settings.Validate(); err != nil {
		return NewBadRequestError(err.Error(), nil)
	}

	if err := h.settings.SaveSettings(c.Request().Context(), &settings); err != nil {
		return NewInternalError("failed to save settings", err)
	}

	if h.events != nil {
		h.events.Append(&models.Event{
			Level:   models.LevelInfo,
			Source:  models.SourceSystem,
			Message: "detector settings updated",
		})
	}
	return c.JSON(http.StatusOK, settings)
}
