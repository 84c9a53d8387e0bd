// mock_stores.go - In-memory store implementations for handler tests
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/store"
)

// MockZoneStore implements store.ZoneStore in memory
type MockZoneStore struct {
	mu    sync.RWMutex
	zones map[string]*models.Zone

	// FailWith, when set, is returned by every method
	FailWith error
}

// NewMockZoneStore creates an empty mock zone store
func NewMockZoneStore() *MockZoneStore {
	return &MockZoneStore{zones: make(map[string]*models.Zone)}
}

func (m *MockZoneStore) ListZones(ctx context.Context) ([]*models.Zone, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	zones := make([]*models.Zone, 0, len(m.zones))
	for _, z := range m.zones {
		zones = append(zones, z)
	}
	return zones, nil
}

func (m *MockZoneStore) GetZone(ctx context.Context, id string) (*models.Zone, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return z, nil
}

func (m *MockZoneStore) CreateZone(ctx context.Context, zone *models.Zone) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, z := range m.zones {
		if z.Name == zone.Name {
			return fmt.Errorf("zone %q: %w", zone.Name, store.ErrConflict)
		}
	}
	if zone.ID == "" {
		zone.ID = uuid.New().String()
	}
	zone.CreatedAt = time.Now()
	zone.UpdatedAt = zone.CreatedAt
	m.zones[zone.ID] = zone
	return nil
}

func (m *MockZoneStore) UpdateZone(ctx context.Context, zone *models.Zone) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.zones[zone.ID]; !ok {
		return store.ErrNotFound
	}
	zone.UpdatedAt = time.Now()
	m.zones[zone.ID] = zone
	return nil
}

func (m *MockZoneStore) DeleteZone(ctx context.Context, id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.zones[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.zones, id)
	return nil
}

// MockUserStore implements store.UserStore in memory
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMockUserStore creates an empty mock user store
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]*models.User)}
}

func (m *MockUserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *MockUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *MockUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("user %q: %w", user.Username, store.ErrConflict)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return nil
}

func (m *MockUserStore) UpdateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// MockSettingsStore implements store.SettingsStore in memory
type MockSettingsStore struct {
	mu       sync.RWMutex
	settings *models.Settings
}

// NewMockSettingsStore creates a mock settings store with defaults
func NewMockSettingsStore() *MockSettingsStore {
	defaults := models.DefaultSettings()
	return &MockSettingsStore{settings: &defaults}
}

func (m *MockSettingsStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := *m.settings
	return &s, nil
}

func (m *MockSettingsStore) SaveSettings(ctx context.Context, s *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.settings = &copied
	return nil
}

// MockSnapshotStore implements storage.Store in memory
type MockSnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*models.SnapshotInfo
	data      map[string][]byte
}

// NewMockSnapshotStore creates an empty mock snapshot store
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{
		snapshots: make(map[string]*models.SnapshotInfo),
		data:      make(map[string][]byte),
	}
}

func (m *MockSnapshotStore) Save(name, zoneID string, r io.Reader) (*models.SnapshotInfo, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	info := &models.SnapshotInfo{
		ID:         uuid.New().String(),
		Name:       name,
		ZoneID:     zoneID,
		Size:       int64(buf.Len()),
		CapturedAt: time.Now(),
	}
	m.snapshots[info.ID] = info
	m.data[info.ID] = buf.Bytes()
	return info, nil
}

func (m *MockSnapshotStore) Get(id string) (*models.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	return info, nil
}

func (m *MockSnapshotStore) List(limit int) ([]*models.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*models.SnapshotInfo, 0, len(m.snapshots))
	for _, info := range m.snapshots {
		list = append(list, info)
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockSnapshotStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snapshots[id]; !ok {
		return fmt.Errorf("snapshot not found: %s", id)
	}
	delete(m.snapshots, id)
	delete(m.data, id)
	return nil
}

func (m *MockSnapshotStore) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.snapshots[id]; !ok {
		return "", fmt.Errorf("snapshot not found: %s", id)
	}
	return "/dev/null", nil
}

func (m *MockSnapshotStore) Read(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	return data, nil
}
