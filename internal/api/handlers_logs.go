// handlers_logs.go - Event log query and ingest handlers
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/eventlog"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/metrics"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// LogHandlerImpl implements the LogHandler interface
type LogHandlerImpl struct {
	events  *eventlog.DuckStore
	metrics *metrics.Metrics
}

// NewLogHandler creates a new log handler instance
func NewLogHandler(events *eventlog.DuckStore, m *metrics.Metrics) LogHandler {
	return &LogHandlerImpl{events: events, metrics: m}
}

func parseQueryParams(c echo.Context) (eventlog.QueryParams, int, int) {
	params := eventlog.QueryParams{
		Level:         c.QueryParam("level"),
		Source:        c.QueryParam("source"),
		ZoneID:        c.QueryParam("zoneId"),
		Search:        c.QueryParam("search"),
		SortDirection: c.QueryParam("sort"),
	}
	if v := c.QueryParam("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.Since = t
		}
	}
	if v := c.QueryParam("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.Until = t
		}
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 100
	}
	return params, page, pageSize
}

// HandleQueryEvents returns a filtered, paginated page of the event log
func (h *LogHandlerImpl) HandleQueryEvents(c echo.Context) error {
	params, page, pageSize := parseQueryParams(c)

	events, total, err := h.events.Query(c.Request().Context(), params, page, pageSize)
	if err != nil {
		return NewInternalError("failed to query events", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events":   events,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// HandleQueryEventsMsgpack returns the same payload msgpack-encoded,
// for bulk transfers to the log viewer
func (h *LogHandlerImpl) HandleQueryEventsMsgpack(c echo.Context) error {
	params, page, pageSize := parseQueryParams(c)

	events, total, err := h.events.Query(c.Request().Context(), params, page, pageSize)
	if err != nil {
		return NewInternalError("failed to query events", err)
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"events":   events,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to encode msgpack"})
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleLogSummary returns per-level and per-source event counts
func (h *LogHandlerImpl) HandleLogSummary(c echo.Context) error {
	summary, err := h.events.Summarize(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to summarize events", err)
	}
	return c.JSON(http.StatusOK, summary)
}

// HandleIngestEvent accepts an event from the detector pipeline
func (h *LogHandlerImpl) HandleIngestEvent(c echo.Context) error {
	var event models.Event
	if err := c.Bind(&event); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if event.Message == "" {
		return NewValidationError("message")
	}
	switch event.Level {
	case models.LevelInfo, models.LevelWarning, models.LevelAlert, models.LevelError:
	case "":
		event.Level = models.LevelInfo
	default:
		return NewValidationError("level")
	}
	if event.Source == "" {
		event.Source = models.SourceDetector
	}

	h.events.Append(&event)
	if h.metrics != nil {
		h.metrics.EventsRecorded.Add(1)
		if event.Level == models.LevelAlert {
			h.metrics.AlertsRecorded.Add(1)
		}
	}
	return c.JSON(http.StatusAccepted, event)
}
