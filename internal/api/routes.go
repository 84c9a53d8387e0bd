// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/auth"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/editor"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/eventlog"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/metrics"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/storage"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/store"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/stream"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Zones          store.ZoneStore
	Users          store.UserStore
	Settings       store.SettingsStore
	Events         *eventlog.DuckStore
	Snapshots      storage.Store
	Auth           *auth.Manager
	Editor         *editor.Manager
	Broadcaster    *stream.FrameBroadcaster
	Source         *stream.Source
	Poller         *stream.StatusPoller
	Metrics        *metrics.Metrics
	ControlBase    string
	StatusInterval time.Duration
	RequireAuth    bool
	Version        string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Auth     AuthHandler
	Zones    ZoneHandler
	Users    UserHandler
	Settings SettingsHandler
	Logs     LogHandler
	Stream   StreamHandler
	Editor   EditorHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Source),
		Auth:     NewAuthHandler(deps.Auth, deps.Events, deps.Metrics),
		Zones:    NewZoneHandler(deps.Zones, deps.Events, deps.Metrics),
		Users:    NewUserHandler(deps.Users, deps.Auth),
		Settings: NewSettingsHandler(deps.Settings, deps.Events),
		Logs:     NewLogHandler(deps.Events, deps.Metrics),
		Stream:   NewStreamHandler(deps.Broadcaster, deps.Poller, deps.Snapshots, deps.ControlBase, deps.StatusInterval, deps.Metrics),
		Editor:   NewEditorHandler(deps.Editor, deps.Zones, deps.Snapshots, deps.Broadcaster, deps.Events, deps.Metrics),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, deps *Dependencies) {
	// Health check and login are reachable without a session
	e.GET("/health", handlers.Health.HandleHealth)
	e.POST("/api/auth/login", handlers.Auth.HandleLogin)

	requireAuth := RequireAuth(deps.Auth, deps.RequireAuth)
	requireAdmin := RequireAdmin()

	authGroup := e.Group("/api/auth", requireAuth)
	authGroup.POST("/logout", handlers.Auth.HandleLogout)
	authGroup.GET("/me", handlers.Auth.HandleMe)

	// Zone routes; mutation requires admin
	zoneGroup := e.Group("/api/zones", requireAuth)
	zoneGroup.GET("", handlers.Zones.HandleListZones)
	zoneGroup.GET("/:id", handlers.Zones.HandleGetZone)
	zoneGroup.POST("", handlers.Zones.HandleCreateZone, requireAdmin)
	zoneGroup.PUT("/:id", handlers.Zones.HandleUpdateZone, requireAdmin)
	zoneGroup.DELETE("/:id", handlers.Zones.HandleDeleteZone, requireAdmin)
	zoneGroup.POST("/:id/active", handlers.Zones.HandleSetZoneActive, requireAdmin)

	// Account management is admin-only
	userGroup := e.Group("/api/users", requireAuth, requireAdmin)
	userGroup.GET("", handlers.Users.HandleListUsers)
	userGroup.POST("", handlers.Users.HandleCreateUser)
	userGroup.PUT("/:id", handlers.Users.HandleUpdateUser)
	userGroup.DELETE("/:id", handlers.Users.HandleDeleteUser)

	// Settings
	settingsGroup := e.Group("/api/settings", requireAuth)
	settingsGroup.GET("", handlers.Settings.HandleGetSettings)
	settingsGroup.PUT("", handlers.Settings.HandleUpdateSettings, requireAdmin)

	// Event log
	logGroup := e.Group("/api/logs", requireAuth)
	logGroup.GET("", handlers.Logs.HandleQueryEvents)
	logGroup.GET("/msgpack", handlers.Logs.HandleQueryEventsMsgpack)
	logGroup.GET("/summary", handlers.Logs.HandleLogSummary)
	logGroup.POST("/events", handlers.Logs.HandleIngestEvent)

	// Live feed
	streamGroup := e.Group("/api/stream", requireAuth)
	streamGroup.GET("", handlers.Stream.HandleStream)
	streamGroup.GET("/status", handlers.Stream.HandleStatus)
	streamGroup.GET("/status/events", handlers.Stream.HandleStatusStream)
	streamGroup.POST("/snapshot", handlers.Stream.HandleSnapshot)
	streamGroup.GET("/snapshots", handlers.Stream.HandleListSnapshots)
	streamGroup.GET("/snapshots/:id", handlers.Stream.HandleGetSnapshot)
	streamGroup.DELETE("/snapshots/:id", handlers.Stream.HandleDeleteSnapshot, requireAdmin)
	streamGroup.POST("/control/:action", handlers.Stream.HandleControl, requireAdmin)

	// Zone editor
	editorGroup := e.Group("/api/editor", requireAuth)
	editorGroup.POST("/sessions", handlers.Editor.HandleOpenSession)
	editorGroup.GET("/sessions/:sessionId", handlers.Editor.HandleGetState)
	editorGroup.POST("/sessions/:sessionId/pointer", handlers.Editor.HandlePointer)
	editorGroup.PUT("/sessions/:sessionId/draft", handlers.Editor.HandleSetDraft)
	editorGroup.POST("/sessions/:sessionId/clear", handlers.Editor.HandleClearPoints)
	editorGroup.POST("/sessions/:sessionId/save", handlers.Editor.HandleSave)
	editorGroup.GET("/sessions/:sessionId/frame", handlers.Editor.HandleFrame)
	editorGroup.GET("/sessions/:sessionId/preview", handlers.Editor.HandlePreview)
	editorGroup.DELETE("/sessions/:sessionId", handlers.Editor.HandleCloseSession)
	editorGroup.GET("/sessions/:sessionId/ws", handlers.Editor.HandleEditorSocket)

	// Prometheus metrics
	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}
}
