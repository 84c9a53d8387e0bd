// Package store persists zones, users and detection settings in SQLite.
package store

import (
	"context"
	"errors"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("already exists")

// ZoneStore manages detection zone persistence.
type ZoneStore interface {
	ListZones(ctx context.Context) ([]*models.Zone, error)
	GetZone(ctx context.Context, id string) (*models.Zone, error)
	CreateZone(ctx context.Context, zone *models.Zone) error
	UpdateZone(ctx context.Context, zone *models.Zone) error
	DeleteZone(ctx context.Context, id string) error
}

// UserStore manages console account persistence.
type UserStore interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// SettingsStore manages the single detector settings record.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error
}
