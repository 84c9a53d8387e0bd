// handlers_stream.go - Live feed relay, status and snapshot handlers
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/metrics"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/storage"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/stream"
)

// StreamHandlerImpl implements the StreamHandler interface
type StreamHandlerImpl struct {
	broadcaster *stream.FrameBroadcaster
	poller      *stream.StatusPoller
	snapshots   storage.Store
	controlBase string
	pushEvery   time.Duration
	client      *http.Client
	metrics     *metrics.Metrics
}

// NewStreamHandler creates a new stream handler instance. controlBase is
// the detector's base URL for forwarded control requests; pushEvery sets
// the SSE status push cadence.
func NewStreamHandler(b *stream.FrameBroadcaster, p *stream.StatusPoller, snapshots storage.Store, controlBase string, pushEvery time.Duration, m *metrics.Metrics) StreamHandler {
	if pushEvery <= 0 {
		pushEvery = 2 * time.Second
	}
	return &StreamHandlerImpl{
		broadcaster: b,
		poller:      p,
		snapshots:   snapshots,
		controlBase: controlBase,
		pushEvery:   pushEvery,
		client:      &http.Client{Timeout: 10 * time.Second},
		metrics:     m,
	}
}

// HandleStream relays the detector MJPEG feed to the browser
func (h *StreamHandlerImpl) HandleStream(c echo.Context) error {
	id, frames := h.broadcaster.Subscribe()
	defer func() {
		h.broadcaster.Unsubscribe(id)
		if h.metrics != nil {
			h.metrics.StreamClients.Store(uint64(h.broadcaster.ClientCount()))
		}
	}()
	if h.metrics != nil {
		h.metrics.StreamClients.Store(uint64(h.broadcaster.ClientCount()))
	}

	return serveMJPEG(c, frames)
}

// serveMJPEG writes frames from a channel as multipart/x-mixed-replace.
func serveMJPEG(c echo.Context, frames <-chan []byte) error {
	w := c.Response()
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if _, err := w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
				return nil
			}
			if _, err := w.Write(frame); err != nil {
				return nil
			}
			if _, err := w.Write([]byte("\r\n")); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

// HandleStatus returns the latest detector status snapshot
func (h *StreamHandlerImpl) HandleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.poller.Status())
}

// HandleStatusStream pushes status snapshots over SSE
func (h *StreamHandlerImpl) HandleStatusStream(c echo.Context) error {
	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(h.pushEvery)
	defer ticker.Stop()

	ctx := c.Request().Context()
	send := func(status models.StreamStatus) error {
		data, err := json.Marshal(status)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	if err := send(h.poller.Status()); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := send(h.poller.Status()); err != nil {
				return nil
			}
		}
	}
}

// HandleSnapshot captures the latest frame as a stored snapshot
func (h *StreamHandlerImpl) HandleSnapshot(c echo.Context) error {
	frame := h.broadcaster.Latest()
	if frame == nil {
		return NewServiceUnavailableError("no frame available yet")
	}

	var req struct {
		Name   string `json:"name"`
		ZoneID string `json:"zoneId"`
	}
	// Body is optional for quick captures.
	_ = c.Bind(&req)

	info, err := h.snapshots.Save(req.Name, req.ZoneID, bytes.NewReader(frame))
	if err != nil {
		return NewInternalError("failed to store snapshot", err)
	}
	logger.Info("Stream", "captured snapshot %s (%d bytes)", info.ID, info.Size)
	return c.JSON(http.StatusCreated, info)
}

// HandleListSnapshots returns recent snapshots
func (h *StreamHandlerImpl) HandleListSnapshots(c echo.Context) error {
	list, err := h.snapshots.List(100)
	if err != nil {
		return NewInternalError("failed to list snapshots", err)
	}
	return c.JSON(http.StatusOK, list)
}

// HandleGetSnapshot serves a snapshot's JPEG bytes
func (h *StreamHandlerImpl) HandleGetSnapshot(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	data, err := h.snapshots.Read(id)
	if err != nil {
		return NewNotFoundError("snapshot", id)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

// HandleDeleteSnapshot removes a snapshot
func (h *StreamHandlerImpl) HandleDeleteSnapshot(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	if err := h.snapshots.Delete(id); err != nil {
		return NewNotFoundError("snapshot", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// allowed detector control actions
var controlActions = map[string]string{
	"pause":  "/control/pause",
	"resume": "/control/resume",
	"reload": "/control/reload_zones",
}

// HandleControl forwards a control action to the detector pipeline
func (h *StreamHandlerImpl) HandleControl(c echo.Context) error {
	action := c.Param("action")
	path, ok := controlActions[action]
	if !ok {
		return NewBadRequestError(fmt.Sprintf("unknown action: %s", action), nil)
	}

	target, err := url.JoinPath(h.controlBase, path)
	if err != nil {
		return NewInternalError("bad control url", err)
	}

	body, status, err := stream.Forward(c.Request().Context(), h.client, target)
	if err != nil {
		return NewServiceUnavailableError("detector unreachable: " + err.Error())
	}
	return c.Blob(status, echo.MIMEApplicationJSON, body)
}
