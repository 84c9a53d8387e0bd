// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// AuthHandler handles login and session operations
type AuthHandler interface {
	HandleLogin(c echo.Context) error
	HandleLogout(c echo.Context) error
	HandleMe(c echo.Context) error
}

// ZoneHandler handles detection zone CRUD
type ZoneHandler interface {
	HandleListZones(c echo.Context) error
	HandleGetZone(c echo.Context) error
	HandleCreateZone(c echo.Context) error
	HandleUpdateZone(c echo.Context) error
	HandleDeleteZone(c echo.Context) error
	HandleSetZoneActive(c echo.Context) error
}

// UserHandler handles console account management
type UserHandler interface {
	HandleListUsers(c echo.Context) error
	HandleCreateUser(c echo.Context) error
	HandleUpdateUser(c echo.Context) error
	HandleDeleteUser(c echo.Context) error
}

// SettingsHandler handles detector settings
type SettingsHandler interface {
	HandleGetSettings(c echo.Context) error
	HandleUpdateSettings(c echo.Context) error
}

// LogHandler handles the event log
type LogHandler interface {
	HandleQueryEvents(c echo.Context) error
	HandleQueryEventsMsgpack(c echo.Context) error
	HandleLogSummary(c echo.Context) error
	HandleIngestEvent(c echo.Context) error
}

// StreamHandler handles the live feed relay and status
type StreamHandler interface {
	HandleStream(c echo.Context) error
	HandleStatus(c echo.Context) error
	HandleStatusStream(c echo.Context) error
	HandleSnapshot(c echo.Context) error
	HandleListSnapshots(c echo.Context) error
	HandleGetSnapshot(c echo.Context) error
	HandleDeleteSnapshot(c echo.Context) error
	HandleControl(c echo.Context) error
}

// EditorHandler handles zone editor sessions
type EditorHandler interface {
	HandleOpenSession(c echo.Context) error
	HandleGetState(c echo.Context) error
	HandlePointer(c echo.Context) error
	HandleSetDraft(c echo.Context) error
	HandleClearPoints(c echo.Context) error
	HandleSave(c echo.Context) error
	HandleFrame(c echo.Context) error
	HandlePreview(c echo.Context) error
	HandleCloseSession(c echo.Context) error
	HandleEditorSocket(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
