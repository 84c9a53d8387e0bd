package editor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// MaxSessions limits concurrent editing sessions to prevent unbounded
// frame buffers.
const MaxSessions = 16

// SessionMaxAge is how long an idle session is kept before cleanup.
const SessionMaxAge = 30 * time.Minute

// Manager holds the active editing sessions. One session per editor tab;
// sessions are independent and never share state.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	width    int
	height   int
}

// NewManager creates a session manager for the given logical canvas size.
func NewManager(canvasWidth, canvasHeight int) *Manager {
	if canvasWidth <= 0 {
		canvasWidth = 640
	}
	if canvasHeight <= 0 {
		canvasHeight = 480
	}
	return &Manager{
		sessions: make(map[string]*Session),
		width:    canvasWidth,
		height:   canvasHeight,
	}
}

// Open starts a session. Pass nil zone for create mode; in edit mode the
// persisted normalized polygon is projected into canvas space and the
// draft pre-populated. background is an optional JPEG reference frame.
func (m *Manager) Open(zone *models.Zone, background []byte) (*Session, error) {
	m.cleanupIfNeeded()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= MaxSessions {
		return nil, fmt.Errorf("too many active editor sessions (max %d)", MaxSessions)
	}

	id := uuid.New().String()

	mode := ModeCreate
	zoneID := ""
	var initial geometry.Polygon
	draft := Draft{
		Mode:        models.ZoneModeCounting,
		Confidence:  0.5,
		AlertCount:  1,
		CooldownSec: 30,
		Enabled:     true,
		Active:      true,
	}

	if zone != nil {
		mode = ModeEdit
		zoneID = zone.ID
		mapper := geometry.NewMapper(m.width, m.height)
		initial = make(geometry.Polygon, len(zone.Points))
		for i, p := range zone.Points {
			initial[i] = mapper.FromNormalized(p)
		}
		draft = Draft{
			Name:        zone.Name,
			Mode:        zone.Mode,
			Confidence:  zone.Confidence,
			AlertCount:  zone.AlertCount,
			CooldownSec: zone.CooldownSec,
			Color:       zone.Color,
			Description: zone.Description,
			Tags:        zone.Tags,
			Enabled:     zone.Enabled,
			Active:      zone.Active,
		}
	}

	s := newSession(id, mode, zoneID, initial, draft, m.width, m.height, background)
	m.sessions[id] = s

	logger.Info("Editor", "session %s opened (%s, %d sessions active)", id[:8], mode, len(m.sessions))
	return s, nil
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close discards a session; the draft is dropped, not persisted.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.close()
		logger.Info("Editor", "session %s closed", id[:8])
	}
	return ok
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupIdleSessions discards sessions idle longer than maxAge. Called
// from the server's cleanup ticker.
func (m *Manager) CleanupIdleSessions(maxAge time.Duration) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := time.Since(s.lastAccessed)
		s.mu.Unlock()
		if idle > maxAge {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		logger.Info("Editor", "session %s expired after idling", s.ID[:8])
	}
	return len(expired)
}

func (m *Manager) cleanupIfNeeded() {
	m.mu.RLock()
	full := len(m.sessions) >= MaxSessions
	m.mu.RUnlock()
	if full {
		m.CleanupIdleSessions(SessionMaxAge)
	}
}
