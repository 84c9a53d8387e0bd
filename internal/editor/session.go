package editor

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// Mode says whether the session edits an existing zone or creates one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Draft is the scalar configuration bundle edited alongside the polygon.
// It is created fresh for create mode, pre-populated from the persisted
// zone in edit mode, and discarded when the session closes.
type Draft struct {
	Name        string          `json:"name"`
	Mode        models.ZoneMode `json:"mode"`
	Confidence  float64         `json:"confidence"`
	AlertCount  int             `json:"alertCount"`
	CooldownSec int             `json:"cooldownSec"`
	Color       string          `json:"color,omitempty"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Enabled     bool            `json:"enabled"`
	Active      bool            `json:"active"`
}

// State is the session snapshot served to the console after every event.
type State struct {
	ID          string           `json:"id"`
	Mode        Mode             `json:"mode"`
	ZoneID      string           `json:"zoneId,omitempty"`
	Points      geometry.Polygon `json:"points"` // canvas space
	Interaction InteractionState `json:"interaction"`
	Validity    Validity         `json:"validity"`
	Savable     bool             `json:"savable"`
	Saving      bool             `json:"saving"`
	Draft       Draft            `json:"draft"`
	Notice      string           `json:"notice,omitempty"`
	CanvasW     int              `json:"canvasW"`
	CanvasH     int              `json:"canvasH"`
}

// Session is one polygon-editing session. It owns its point store and
// interaction state exclusively; nothing is shared across sessions. All
// mutation happens under the session lock, driven by pointer events.
type Session struct {
	ID     string
	mode   Mode
	zoneID string

	mu       sync.Mutex
	store    *PointStore
	state    InteractionState
	mapper   geometry.Mapper
	renderer *renderer
	draft    Draft
	saving   bool

	frame       []byte // latest rendered JPEG
	subscribers map[int]chan []byte
	nextSubID   int

	lastAccessed time.Time
	closed       bool
}

func newSession(id string, mode Mode, zoneID string, initial geometry.Polygon, draft Draft, width, height int, background []byte) *Session {
	s := &Session{
		ID:           id,
		mode:         mode,
		zoneID:       zoneID,
		store:        NewPointStore(initial),
		state:        InteractionState{Phase: PhaseIdle},
		mapper:       geometry.NewMapper(width, height),
		renderer:     &renderer{width: width, height: height},
		draft:        draft,
		subscribers:  make(map[int]chan []byte),
		lastAccessed: time.Now(),
	}
	if err := s.renderer.setBackground(background); err != nil {
		// Degrades to a plain backdrop; the next snapshot can retry.
		logger.Warn("Editor", "session %s: %v", id[:8], err)
	}
	s.redrawLocked()
	return s
}

// Pointer applies one pointer event and returns the updated snapshot.
func (s *Session) Pointer(ev PointerEvent) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = time.Now()

	notice, changed := s.handlePointer(ev)
	if changed {
		s.redrawLocked()
	}
	return s.stateLocked(notice)
}

// SetDraft replaces the scalar configuration fields and returns the
// updated snapshot. A style change redraws the frame.
func (s *Session) SetDraft(d Draft) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = time.Now()

	redraw := d.Color != s.draft.Color
	s.draft = d
	if redraw {
		s.redrawLocked()
	}
	return s.stateLocked("")
}

// ClearPoints empties the polygon (the explicit "clear points" action).
func (s *Session) ClearPoints() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = time.Now()

	s.store.Clear()
	s.state = InteractionState{Phase: PhaseIdle}
	s.redrawLocked()
	return s.stateLocked("points cleared")
}

// SetBackground replaces the reference frame (e.g. a fresh snapshot).
func (s *Session) SetBackground(jpegData []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.renderer.setBackground(jpegData); err != nil {
		return err
	}
	s.redrawLocked()
	return nil
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked("")
}

// Frame returns the latest rendered JPEG frame.
func (s *Session) Frame() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// BeginSave marks a save in flight. It fails when the draft is not savable
// or another save has not resolved yet; the save control stays disabled on
// the console side for the same reasons.
func (s *Session) BeginSave() (*models.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = time.Now()

	v := Validate(s.store.Len())
	if !Savable(v, s.draft.Name) {
		if !v.Valid {
			return nil, fmt.Errorf("cannot save: %s", v.Status)
		}
		return nil, fmt.Errorf("cannot save: zone name is required")
	}
	if s.saving {
		return nil, fmt.Errorf("save already in progress")
	}
	s.saving = true

	points := s.store.Points()
	normalized := make(geometry.Polygon, len(points))
	for i, p := range points {
		normalized[i] = s.mapper.ToNormalized(p)
	}

	return &models.Zone{
		ID:          s.zoneID,
		Name:        s.draft.Name,
		Mode:        s.draft.Mode,
		Points:      normalized,
		Confidence:  s.draft.Confidence,
		AlertCount:  s.draft.AlertCount,
		CooldownSec: s.draft.CooldownSec,
		Color:       s.draft.Color,
		Description: s.draft.Description,
		Tags:        s.draft.Tags,
		Enabled:     s.draft.Enabled,
		Active:      s.draft.Active,
	}, nil
}

// EndSave resolves the in-flight save. On failure the draft is left
// untouched so the user's work is not lost.
func (s *Session) EndSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
}

// Subscribe registers a preview client and returns its frame channel.
func (s *Session) Subscribe() (int, <-chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan []byte, 2) // Buffer 2 frames to avoid blocking
	s.subscribers[id] = ch
	if s.frame != nil {
		ch <- s.frame
	}
	return id, ch
}

// Unsubscribe removes a preview client.
func (s *Session) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}

// Touch refreshes the idle timer.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = time.Now()
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}

func (s *Session) stateLocked(notice string) State {
	v := Validate(s.store.Len())
	return State{
		ID:          s.ID,
		Mode:        s.mode,
		ZoneID:      s.zoneID,
		Points:      s.store.Points(),
		Interaction: s.state,
		Validity:    v,
		Savable:     Savable(v, s.draft.Name),
		Saving:      s.saving,
		Draft:       s.draft,
		Notice:      notice,
		CanvasW:     int(s.mapper.Width),
		CanvasH:     int(s.mapper.Height),
	}
}

// redrawLocked re-renders the frame and fans it out to preview clients.
// Slow clients drop frames rather than block the event handler.
func (s *Session) redrawLocked() {
	img := s.renderer.render(s.store.points, s.state, s.draft.Name, s.draft.Color)
	data, err := encodeJPEG(img)
	if err != nil {
		logger.Error("Editor", "session %s: frame encode failed: %v", s.ID[:8], err)
		return
	}
	s.frame = data

	for _, ch := range s.subscribers {
		select {
		case ch <- data:
		default:
		}
	}
}
