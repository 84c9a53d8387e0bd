package editor

import (
	"fmt"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"
)

// Phase is the interaction state of the canvas. Exactly one phase holds at
// any time, and at most one point may be in drag state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseHovering Phase = "hovering"
	PhaseDragging Phase = "dragging"
)

// InteractionState is transient per-session state, never persisted.
type InteractionState struct {
	Phase Phase `json:"phase"`
	Index int   `json:"index"` // valid when Phase is hovering or dragging
}

// Pointer event types accepted by the editor. They mirror the browser
// events the console forwards: move, primary button down/up, primary
// click on empty space, and context-menu (secondary) click.
const (
	PointerMove        = "move"
	PointerDown        = "down"
	PointerUp          = "up"
	PointerClick       = "click"
	PointerContextMenu = "contextmenu"
)

// PointerEvent is a pointer event in viewport coordinates, together with
// the rendered canvas element's bounding rect so the event can be mapped
// into logical canvas space.
type PointerEvent struct {
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	RectW float64 `json:"rectW,omitempty"`
	RectH float64 `json:"rectH,omitempty"`
}

// handlePointer advances the interaction state machine and mutates the
// point store. It returns a transient user-facing notice ("" when there is
// none) and whether anything changed that requires a redraw. The caller
// holds the session lock.
func (s *Session) handlePointer(ev PointerEvent) (string, bool) {
	p := s.mapper.ToCanvas(ev.X, ev.Y, ev.RectW, ev.RectH)

	switch ev.Type {
	case PointerMove:
		if s.state.Phase == PhaseDragging {
			// Dragging keeps the index picked up at pointer-down even if
			// the list were mutated meanwhile.
			s.store.ReplaceAt(s.state.Index, p)
			return "", true
		}
		return "", s.updateHover(p)

	case PointerDown:
		if s.state.Phase == PhaseHovering {
			s.state = InteractionState{Phase: PhaseDragging, Index: s.state.Index}
			return "", true
		}
		return "", false

	case PointerUp:
		if s.state.Phase == PhaseDragging {
			s.state = InteractionState{Phase: PhaseIdle}
			// Hover is re-evaluated on the next move; doing it here keeps
			// the marker highlighted when the pointer has not left it.
			s.updateHover(p)
			return "", true
		}
		return "", false

	case PointerClick:
		if s.state.Phase != PhaseIdle {
			return "", false
		}
		if _, hit := Nearest(p, s.store.points, HitRadius); hit {
			return "", false
		}
		s.store.Append(p)
		return "", true

	case PointerContextMenu:
		if i, hit := Nearest(p, s.store.points, HitRadius); hit {
			s.store.RemoveAt(i)
			s.state = InteractionState{Phase: PhaseIdle}
			s.updateHover(p)
			return fmt.Sprintf("point %d removed", i+1), true
		}
		return "", false
	}

	return "", false
}

// updateHover recomputes the hover state for a pointer position and
// reports whether the state changed. The already-hovered point keeps its
// hit with a widened radius to avoid flicker at the boundary.
func (s *Session) updateHover(p geometry.Point) bool {
	prev := s.state

	if s.state.Phase == PhaseHovering {
		cur := s.state.Index
		if cur < s.store.Len() && p.DistanceTo(s.store.At(cur)) <= HitRadius+ActiveRadiusBonus {
			return false
		}
	}

	if i, hit := Nearest(p, s.store.points, HitRadius); hit {
		s.state = InteractionState{Phase: PhaseHovering, Index: i}
	} else {
		s.state = InteractionState{Phase: PhaseIdle}
	}
	return s.state != prev
}
