// Package storage keeps captured JPEG snapshots on the local filesystem.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// Store defines the interface for snapshot storage.
type Store interface {
	Save(name, zoneID string, r io.Reader) (*models.SnapshotInfo, error)
	Get(id string) (*models.SnapshotInfo, error)
	List(limit int) ([]*models.SnapshotInfo, error)
	Delete(id string) error
	GetFilePath(id string) (string, error)
	Read(id string) ([]byte, error)
}

// LocalStore implements Store using the local filesystem. Files are
// kept as <id>.jpg so the directory survives restarts and stays
// browsable by hand.
type LocalStore struct {
	mu        sync.RWMutex
	dir       string
	snapshots map[string]*models.SnapshotInfo
}

// NewLocalStore creates a LocalStore and indexes any snapshots already
// on disk.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	s := &LocalStore{
		dir:       dir,
		snapshots: make(map[string]*models.SnapshotInfo),
	}
	if err := s.rescan(); err != nil {
		return nil, err
	}
	return s, nil
}

// rescan indexes existing .jpg files so snapshots survive restarts.
func (s *LocalStore) rescan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading snapshot directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".jpg")
		s.snapshots[id] = &models.SnapshotInfo{
			ID:         id,
			Name:       entry.Name(),
			Size:       info.Size(),
			CapturedAt: info.ModTime(),
		}
	}
	return nil
}

// Save writes a snapshot to disk.
func (s *LocalStore) Save(name, zoneID string, r io.Reader) (*models.SnapshotInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.dir, id+".jpg")

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}

	if name == "" {
		name = "snapshot_" + time.Now().Format("20060102_150405") + ".jpg"
	}
	info := &models.SnapshotInfo{
		ID:         id,
		Name:       name,
		ZoneID:     zoneID,
		Size:       size,
		CapturedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[id] = info

	return info, nil
}

// Get retrieves snapshot metadata by ID.
func (s *LocalStore) Get(id string) (*models.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	return info, nil
}

// List returns the most recent snapshots.
func (s *LocalStore) List(limit int) ([]*models.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.SnapshotInfo, 0, len(s.snapshots))
	for _, info := range s.snapshots {
		list = append(list, info)
	}

	// Sort by CapturedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].CapturedAt.After(list[j].CapturedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes a snapshot from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	path := filepath.Join(s.dir, id+".jpg")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting snapshot: %w", err)
	}

	delete(s.snapshots, id)
	return nil
}

// GetFilePath returns the absolute path to a snapshot.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.snapshots[id]; !ok {
		return "", fmt.Errorf("snapshot not found: %s", id)
	}
	return filepath.Join(s.dir, id+".jpg"), nil
}

// Read returns the snapshot bytes.
func (s *LocalStore) Read(id string) ([]byte, error) {
	path, err := s.GetFilePath(id)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
