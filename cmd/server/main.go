package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/api"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/auth"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/config"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/editor"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/eventlog"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/metrics"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/storage"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/store"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/stream"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// detectorBase strips the stream path from the detector URL, leaving the
// root that control endpoints hang off.
func detectorBase(streamURL string) string {
	u, err := url.Parse(streamURL)
	if err != nil {
		return streamURL
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String()
}

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "ArkVisionConsole.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level := logger.INFO
	if parsed, err := logger.ParseLevel(cfg.Advanced.LogLevel); err == nil {
		level = parsed
	}
	logger.Init(level, os.Stderr, true)

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SQLite: zones, accounts, detector settings
	db, err := store.OpenSQLite(cfg.Storage.DatabaseFile)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Init(ctx, cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	if err := db.SeedDefaultZones(ctx, cfg.Storage.DefaultZonesFile); err != nil {
		logger.Warn("Main", "failed to seed default zones: %v", err)
	}

	// DuckDB event log
	events, err := eventlog.Open(cfg.Storage.EventLogFile, eventlog.Options{
		MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		Threads:     cfg.Advanced.DuckDBThreads,
		BatchSize:   eventlog.DefaultOptions().BatchSize,
	})
	if err != nil {
		fmt.Printf("Failed to open event log: %v\n", err)
		os.Exit(1)
	}
	defer events.Close()

	// Snapshot storage
	snapshots, err := storage.NewLocalStore(cfg.GetSnapshotDir())
	if err != nil {
		fmt.Printf("Failed to initialize snapshot storage: %v\n", err)
		os.Exit(1)
	}

	m := metrics.New()
	sessions := auth.NewManager(db, time.Duration(cfg.Security.SessionTimeoutMinutes)*time.Minute)
	editorMgr := editor.NewManager(cfg.Stream.CanvasWidth, cfg.Stream.CanvasHeight)

	// Detector stream relay
	broadcaster := stream.NewFrameBroadcaster()
	defer broadcaster.Close()
	source := stream.NewSource(cfg.Stream.DetectorURL, broadcaster,
		time.Duration(cfg.Stream.ReconnectSeconds)*time.Second)
	poller := stream.NewStatusPoller(cfg.Stream.StatusURL,
		time.Duration(cfg.Stream.StatusIntervalSeconds)*time.Second,
		time.Duration(cfg.Stream.StaleAfterSeconds)*time.Second,
		source, broadcaster.ClientCount)
	go source.Run(ctx)
	go poller.Run(ctx)

	// Periodic housekeeping: session expiry, idle editors, log retention
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Advanced.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.CleanupExpired()
				editorMgr.CleanupIdleSessions(time.Duration(cfg.Advanced.EditorSessionMaxAgeMin) * time.Minute)
				events.Flush()
				if cfg.Storage.RetentionDays > 0 {
					retention := time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour
					if _, err := events.Prune(ctx, retention); err != nil {
						logger.Warn("Main", "event log prune failed: %v", err)
					}
				}
				m.ActiveSessions.Store(uint64(sessions.Count()))
				m.EditorSessions.Store(uint64(editorMgr.Count()))
			}
		}
	}()

	// Keep the stream gauges fresh for /metrics scrapes
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.FramesRelayed.Store(uint64(source.FrameCount()))
				m.FramesDropped.Store(uint64(broadcaster.DroppedFrames()))
				m.StreamClients.Store(uint64(broadcaster.ClientCount()))
				switch poller.Status().State {
				case models.StreamStateLive:
					m.StreamState.Store(2)
				case models.StreamStateStale:
					m.StreamState.Store(1)
				default:
					m.StreamState.Store(0)
				}
			}
		}
	}()

	events.Append(&models.Event{
		Level:   models.LevelInfo,
		Source:  models.SourceSystem,
		Message: "console started",
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") ||
				path == "/health" ||
				c.Request().Header.Get("Accept") == "text/event-stream"
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	deps := &api.Dependencies{
		Zones:          db,
		Users:          db,
		Settings:       db,
		Events:         events,
		Snapshots:      snapshots,
		Auth:           sessions,
		Editor:         editorMgr,
		Broadcaster:    broadcaster,
		Source:         source,
		Poller:         poller,
		Metrics:        m,
		ControlBase:    detectorBase(cfg.Stream.DetectorURL),
		StatusInterval: time.Duration(cfg.Stream.StatusIntervalSeconds) * time.Second,
		RequireAuth:    cfg.Security.RequireAuth,
		Version:        Version,
	}
	api.RegisterRoutes(e, api.NewHandlers(deps), deps)

	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("Main", "failed to register static routes: %v", err)
		}
	}

	s := &http.Server{
		Addr:        cfg.GetServerAddr(),
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		IdleTimeout: time.Duration(cfg.Server.IdleTimeout) * time.Second,
		// No write timeout: MJPEG and SSE responses stay open.
	}

	mode := "API only"
	if embeddedMode {
		mode = "Embedded console"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Ark Vision Console                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Detector:  %-46s║\n", cfg.Stream.DetectorURL)
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			logger.Error("Main", "server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Main", "shutting down")

	events.Append(&models.Event{
		Level:   models.LevelInfo,
		Source:  models.SourceSystem,
		Message: "console stopped",
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Main", "shutdown error: %v", err)
	}
}
