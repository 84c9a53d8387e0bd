// Package config provides XML-based configuration management for air-gapped deployment.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"ArkVisionConsole"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Stream configuration
	Stream StreamConfig `xml:"Stream"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains database and file storage settings
type StorageConfig struct {
	DataDirectory     string `xml:"DataDirectory"`
	SnapshotDirectory string `xml:"SnapshotDirectory"`
	DatabaseFile      string `xml:"DatabaseFile"`
	EventLogFile      string `xml:"EventLogFile"`
	DefaultZonesFile  string `xml:"DefaultZonesFile"`
	RetentionDays     int    `xml:"EventRetentionDays"`
}

// StreamConfig contains detector pipeline connection settings
type StreamConfig struct {
	DetectorURL           string `xml:"DetectorURL"`
	StatusURL             string `xml:"StatusURL"`
	CanvasWidth           int    `xml:"CanvasWidth"`
	CanvasHeight          int    `xml:"CanvasHeight"`
	StatusIntervalSeconds int    `xml:"StatusIntervalSeconds"`
	StaleAfterSeconds     int    `xml:"StaleAfterSeconds"`
	ReconnectSeconds      int    `xml:"ReconnectSeconds"`
}

// SecurityConfig contains authentication settings
type SecurityConfig struct {
	RequireAuth           bool   `xml:"RequireAuthentication"`
	SessionTimeoutMinutes int    `xml:"SessionTimeoutMinutes"`
	AdminUsername         string `xml:"AdminUsername"`
	AdminPassword         string `xml:"AdminPassword"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel                string `xml:"LogLevel"`
	EnableRequestLogging    bool   `xml:"EnableRequestLogging"`
	DuckDBThreads           int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit       string `xml:"DuckDBMemoryLimit"`
	EditorSessionMaxAgeMin  int    `xml:"EditorSessionMaxAgeMinutes"`
	CleanupIntervalMinutes  int    `xml:"CleanupIntervalMinutes"`
	WebSocketMaxMessageSize int    `xml:"WebSocketMaxMessageSizeKB"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			IdleTimeout:  120,
			BodyLimit:    "32M",
		},
		Storage: StorageConfig{
			DataDirectory:     "./data",
			SnapshotDirectory: "./data/snapshots",
			DatabaseFile:      "./data/console.db",
			EventLogFile:      "./data/events.duckdb",
			DefaultZonesFile:  "./data/zones.yaml",
			RetentionDays:     30,
		},
		Stream: StreamConfig{
			DetectorURL:           "http://127.0.0.1:5000/video_feed",
			StatusURL:             "http://127.0.0.1:5000/status",
			CanvasWidth:           640,
			CanvasHeight:          480,
			StatusIntervalSeconds: 2,
			StaleAfterSeconds:     5,
			ReconnectSeconds:      3,
		},
		Security: SecurityConfig{
			RequireAuth:           true,
			SessionTimeoutMinutes: 720,
			AdminUsername:         "admin",
			AdminPassword:         "admin",
		},
		Advanced: AdvancedConfig{
			LogLevel:                "info",
			EnableRequestLogging:    true,
			DuckDBThreads:           2,
			DuckDBMemoryLimit:       "512MB",
			EditorSessionMaxAgeMin:  30,
			CleanupIntervalMinutes:  5,
			WebSocketMaxMessageSize: 64,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Ark Vision Console Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	// DETECTOR_URL override for pointing the console at another pipeline
	if url := os.Getenv("DETECTOR_URL"); url != "" {
		c.Stream.DetectorURL = url
	}
	if url := os.Getenv("DETECTOR_STATUS_URL"); url != "" {
		c.Stream.StatusURL = url
	}

	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		c.Security.AdminPassword = pw
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.SnapshotDirectory) {
		c.Storage.SnapshotDirectory = filepath.Join(configDir, c.Storage.SnapshotDirectory)
	}
	if !filepath.IsAbs(c.Storage.DatabaseFile) {
		c.Storage.DatabaseFile = filepath.Join(configDir, c.Storage.DatabaseFile)
	}
	if !filepath.IsAbs(c.Storage.EventLogFile) {
		c.Storage.EventLogFile = filepath.Join(configDir, c.Storage.EventLogFile)
	}
	if !filepath.IsAbs(c.Storage.DefaultZonesFile) {
		c.Storage.DefaultZonesFile = filepath.Join(configDir, c.Storage.DefaultZonesFile)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetSnapshotDir returns the absolute snapshot directory path
func (c *AppConfig) GetSnapshotDir() string {
	return c.Storage.SnapshotDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.SnapshotDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
