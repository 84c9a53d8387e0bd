package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements ZoneStore, UserStore and SettingsStore on a
// single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the console database.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

// Init applies the schema and makes sure an admin account exists.
func (s *SQLiteStore) Init(ctx context.Context, adminUser, adminPassword string) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := s.ensureAdmin(ctx, adminUser, adminPassword); err != nil {
		return err
	}
	return s.ensureSettings(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for tests.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// ============================================================
// Zones
// ============================================================

const zoneColumns = "id, name, mode, points, confidence, alert_count, cooldown_sec, color, description, tags, enabled, active, created_at, updated_at"

func (s *SQLiteStore) ListZones(ctx context.Context) ([]*models.Zone, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+zoneColumns+" FROM zones ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := make([]*models.Zone, 0)
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (s *SQLiteStore) GetZone(ctx context.Context, id string) (*models.Zone, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+zoneColumns+" FROM zones WHERE id = ?", id)
	z, err := scanZone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return z, err
}

func (s *SQLiteStore) CreateZone(ctx context.Context, zone *models.Zone) error {
	if zone.ID == "" {
		zone.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	zone.CreatedAt = now
	zone.UpdatedAt = now

	points, tags, err := encodeZoneFields(zone)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO zones (`+zoneColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, zone.ID, zone.Name, string(zone.Mode), points, zone.Confidence, zone.AlertCount,
		zone.CooldownSec, zone.Color, zone.Description, tags,
		boolToInt(zone.Enabled), boolToInt(zone.Active),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return fmt.Errorf("zone %q: %w", zone.Name, ErrConflict)
	}
	return err
}

func (s *SQLiteStore) UpdateZone(ctx context.Context, zone *models.Zone) error {
	zone.UpdatedAt = time.Now().UTC()

	points, tags, err := encodeZoneFields(zone)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
        UPDATE zones SET name = ?, mode = ?, points = ?, confidence = ?, alert_count = ?,
            cooldown_sec = ?, color = ?, description = ?, tags = ?, enabled = ?, active = ?,
            updated_at = ?
        WHERE id = ?
    `, zone.Name, string(zone.Mode), points, zone.Confidence, zone.AlertCount,
		zone.CooldownSec, zone.Color, zone.Description, tags,
		boolToInt(zone.Enabled), boolToInt(zone.Active),
		zone.UpdatedAt.Format(time.RFC3339Nano), zone.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("zone %q: %w", zone.Name, ErrConflict)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteZone(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM zones WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (*models.Zone, error) {
	var (
		z                   models.Zone
		mode                string
		pointsJSON, tagsRaw string
		enabled, active     int
		created, updated    string
	)
	err := row.Scan(&z.ID, &z.Name, &mode, &pointsJSON, &z.Confidence, &z.AlertCount,
		&z.CooldownSec, &z.Color, &z.Description, &tagsRaw, &enabled, &active, &created, &updated)
	if err != nil {
		return nil, err
	}

	z.Mode = models.ZoneMode(mode)
	z.Enabled = enabled != 0
	z.Active = active != 0
	if err := json.Unmarshal([]byte(pointsJSON), &z.Points); err != nil {
		return nil, fmt.Errorf("zone %s: decode points: %w", z.ID, err)
	}
	if err := json.Unmarshal([]byte(tagsRaw), &z.Tags); err != nil {
		return nil, fmt.Errorf("zone %s: decode tags: %w", z.ID, err)
	}
	z.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	z.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &z, nil
}

func encodeZoneFields(zone *models.Zone) (points, tags string, err error) {
	p, err := json.Marshal(zone.Points)
	if err != nil {
		return "", "", fmt.Errorf("encode points: %w", err)
	}
	if zone.Tags == nil {
		zone.Tags = []string{}
	}
	t, err := json.Marshal(zone.Tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	return string(p), string(t), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================
// Users
// ============================================================

const userColumns = "id, username, password_hash, role, created_at, updated_at"

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (`+userColumns+`)
        VALUES (?, ?, ?, ?, ?, ?)
    `, user.ID, user.Username, user.PasswordHash, string(user.Role),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
	}
	return err
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
        UPDATE users SET username = ?, password_hash = ?, role = ?, updated_at = ?
        WHERE id = ?
    `, user.Username, user.PasswordHash, string(user.Role),
		user.UpdatedAt.Format(time.RFC3339Nano), user.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                models.User
		role             string
		created, updated string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &created, &updated); err != nil {
		return nil, err
	}
	u.Role = models.UserRole(role)
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	u.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &u, nil
}

func (s *SQLiteStore) ensureAdmin(ctx context.Context, username, password string) error {
	if username == "" {
		username = "admin"
	}
	if _, err := s.GetUserByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	err = s.CreateUser(ctx, &models.User{
		Username:     username,
		Role:         models.RoleAdmin,
		PasswordHash: string(hash),
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("Store", "seeded default admin account %q", username)
	return nil
}

// ============================================================
// Settings
// ============================================================

func (s *SQLiteStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT confidence, iou, target_fps, frame_width, frame_height, retention_days, notify_on_alert
        FROM settings WHERE id = 1
    `)
	var (
		st     models.Settings
		notify int
	)
	err := row.Scan(&st.Confidence, &st.IOU, &st.TargetFPS, &st.FrameWidth, &st.FrameHeight,
		&st.RetentionDays, &notify)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	st.NotifyOnAlert = notify != 0
	return &st, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, st *models.Settings) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO settings (id, confidence, iou, target_fps, frame_width, frame_height, retention_days, notify_on_alert, updated_at)
        VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            confidence = excluded.confidence,
            iou = excluded.iou,
            target_fps = excluded.target_fps,
            frame_width = excluded.frame_width,
            frame_height = excluded.frame_height,
            retention_days = excluded.retention_days,
            notify_on_alert = excluded.notify_on_alert,
            updated_at = excluded.updated_at
    `, st.Confidence, st.IOU, st.TargetFPS, st.FrameWidth, st.FrameHeight,
		st.RetentionDays, boolToInt(st.NotifyOnAlert), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) ensureSettings(ctx context.Context) error {
	if _, err := s.GetSettings(ctx); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	def := models.DefaultSettings()
	return s.SaveSettings(ctx, &def)
}

// ============================================================
// Default zones
// ============================================================

// zoneSeed is the YAML shape of a default zone entry.
type zoneSeed struct {
	Name        string       `yaml:"name"`
	Mode        string       `yaml:"mode"`
	Points      [][2]float64 `yaml:"points"`
	Confidence  float64      `yaml:"confidence"`
	AlertCount  int          `yaml:"alertCount"`
	CooldownSec int          `yaml:"cooldownSec"`
	Color       string       `yaml:"color"`
	Description string       `yaml:"description"`
	Tags        []string     `yaml:"tags"`
}

// SeedDefaultZones loads zones from a YAML file when the zones table is
// empty. A missing file is not an error.
func (s *SQLiteStore) SeedDefaultZones(ctx context.Context, path string) error {
	existing, err := s.ListZones(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seeds, err := loadZoneSeeds(path)
	if err != nil {
		return err
	}
	for _, seed := range seeds {
		zone := &models.Zone{
			Name:        seed.Name,
			Mode:        models.ZoneMode(seed.Mode),
			Points:      geometry.FromPairs(seed.Points),
			Confidence:  seed.Confidence,
			AlertCount:  seed.AlertCount,
			CooldownSec: seed.CooldownSec,
			Color:       seed.Color,
			Description: seed.Description,
			Tags:        seed.Tags,
			Enabled:     true,
			Active:      true,
		}
		if zone.Mode == "" {
			zone.Mode = models.ZoneModeCounting
		}
		if zone.Confidence == 0 {
			zone.Confidence = 0.5
		}
		if zone.AlertCount == 0 {
			zone.AlertCount = 1
		}
		if err := zone.Validate(); err != nil {
			logger.Warn("Store", "skipping default zone %q: %v", seed.Name, err)
			continue
		}
		if err := s.CreateZone(ctx, zone); err != nil {
			return fmt.Errorf("seed zone %q: %w", seed.Name, err)
		}
	}
	if len(seeds) > 0 {
		logger.Info("Store", "seeded %d default zones from %s", len(seeds), path)
	}
	return nil
}
