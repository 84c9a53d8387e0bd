// handlers_editor.go - Zone editor session handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/editor"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/eventlog"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/metrics"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/storage"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/store"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/stream"
)

// EditorHandlerImpl implements the EditorHandler interface
type EditorHandlerImpl struct {
	sessions    *editor.Manager
	zones       store.ZoneStore
	snapshots   storage.Store
	broadcaster *stream.FrameBroadcaster
	events      *eventlog.DuckStore
	metrics     *metrics.Metrics
}

// NewEditorHandler creates a new editor handler instance
func NewEditorHandler(sessions *editor.Manager, zones store.ZoneStore, snapshots storage.Store, b *stream.FrameBroadcaster, events *eventlog.DuckStore, m *metrics.Metrics) EditorHandler {
	return &EditorHandlerImpl{
		sessions:    sessions,
		zones:       zones,
		snapshots:   snapshots,
		broadcaster: b,
		events:      events,
		metrics:     m,
	}
}

// HandleOpenSession opens an editor session, optionally loading an
// existing zone and a background snapshot
func (h *EditorHandlerImpl) HandleOpenSession(c echo.Context) error {
	var req struct {
		ZoneID     string `json:"zoneId,omitempty"`
		SnapshotID string `json:"snapshotId,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	var zone *models.Zone
	if req.ZoneID != "" {
		z, err := h.zones.GetZone(c.Request().Context(), req.ZoneID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NewNotFoundError("zone", req.ZoneID)
			}
			return NewInternalError("failed to load zone", err)
		}
		zone = z
	}

	// Background preference: requested snapshot, then the live frame.
	var background []byte
	if req.SnapshotID != "" {
		data, err := h.snapshots.Read(req.SnapshotID)
		if err != nil {
			return NewNotFoundError("snapshot", req.SnapshotID)
		}
		background = data
	} else if h.broadcaster != nil {
		background = h.broadcaster.Latest()
	}

	session, err := h.sessions.Open(zone, background)
	if err != nil {
		return NewServiceUnavailableError(err.Error())
	}
	if h.metrics != nil {
		h.metrics.EditorSessions.Store(uint64(h.sessions.Count()))
	}

	return c.JSON(http.StatusCreated, session.State())
}

func (h *EditorHandlerImpl) session(c echo.Context) (*editor.Session, *APIError) {
	id := c.Param("sessionId")
	if id == "" {
		return nil, NewValidationError("sessionId")
	}
	session, ok := h.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("editor session", id)
	}
	return session, nil
}

// HandleGetState returns the session's full state
func (h *EditorHandlerImpl) HandleGetState(c echo.Context) error {
	session, apiErr := h.session(c)
	if apiErr != nil {
		return apiErr
	}
	session.Touch()
	return c.JSON(http.StatusOK, session.State())
}

// HandlePointer applies a pointer event and returns the new state
func (h *EditorHandlerImpl) HandlePointer(c echo.Context) error {
	session, apiErr := h.session(c)
	if apiErr != nil {
		return apiErr
	}

	var ev editor.PointerEvent
	if err := c.Bind(&ev); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	switch ev.Type {
	case editor.PointerMove, editor.PointerDown, editor.PointerUp, editor.PointerClick, editor.PointerContextMenu:
	default:
		return NewValidationError("type")
	}

	return c.JSON(http.StatusOK, session.Pointer(ev))
}

// HandleSetDraft updates the zone form fields attached to the session
func (h *EditorHandlerImpl) HandleSetDraft(c echo.Context) error {
	session, apiErr := h.session(c)
	if apiErr != nil {
		return apiErr
	}

	var draft editor.Draft
	if err := c.Bind(&draft); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	return c.JSON(http.StatusOK, session.SetDraft(draft))
}

// HandleClearPoints removes every point from the canvas
func (h *EditorHandlerImpl) HandleClearPoints(c echo.Context) error {
	session, apiErr := h.session(c)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, session.ClearPoints())
}

// HandleSave persists the drafted zone
func (h *EditorHandlerImpl) HandleSave(c echo.Context) error {
	session, apiErr := h.session(c)
	if apiErr != nil {
		return apiErr
	}

	zone, err := session.BeginSave()
	if err != nil {
		return NewBadRequestError(err.Error(), nil)
	}
	defer session.EndSave()

	ctx := c.Request().Context()
	if zone.ID != "" {
		err = h.zones.UpdateZone(ctx, zone)
	} else {
		err = h.zones.CreateZone(ctx, zone)
	}
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return NewConflictError("zone name " + zone.Name + " already in use")
		}
		return NewInternalError("failed to save zone", err)
	}

	if h.events != nil {
		h.events.Append(&models.Event{
			Level:   models.LevelInfo,
			Source:  models.SourceEditor,
			ZoneID:  zone.ID,
			Message: "zone " + zone.Name + " saved from editor",
		})
	}
	if h.metrics != nil {
		h.metrics.ZonesSaved.Add(1)
	}
	return c.JSON(http.StatusOK, zone)
}

// HandleFrame serves the current rendered canvas as a JPEG
func (h *EditorHandlerImpl) HandleFrame(c echo.Context) error {
	session, apiErr := h.session(c)
	if apiErr != nil {
		return apiErr
	}
	frame := session.Frame()
	if frame == nil {
		return NewServiceUnavailableError("no frame rendered yet")
	}
	return c.Blob(http.StatusOK, "image/jpeg", frame)
}

// HandlePreview streams rendered canvas frames as MJPEG
func (h *EditorHandlerImpl) HandlePreview(c echo.Context) error {
	session, apiErr := h.session(c)
	if apiErr != nil {
		return apiErr
	}

	id, frames := session.Subscribe()
	defer session.Unsubscribe(id)
	return serveMJPEG(c, frames)
}

// HandleCloseSession discards an editor session
func (h *EditorHandlerImpl) HandleCloseSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}
	if !h.sessions.Close(id) {
		return NewNotFoundError("editor session", id)
	}
	if h.metrics != nil {
		h.metrics.EditorSessions.Store(uint64(h.sessions.Count()))
	}
	return c.NoContent(http.StatusNoContent)
}
