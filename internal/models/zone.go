package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"
)

// ZoneMode selects the counting/alerting behavior the detector applies
// inside a zone.
type ZoneMode string

const (
	ZoneModeCounting  ZoneMode = "counting"
	ZoneModeIntrusion ZoneMode = "intrusion"
	ZoneModeLoitering ZoneMode = "loitering"
)

// AllZoneModes returns the valid zone modes.
func AllZoneModes() []ZoneMode {
	return []ZoneMode{ZoneModeCounting, ZoneModeIntrusion, ZoneModeLoitering}
}

// ValidZoneMode checks whether s is a known mode.
func ValidZoneMode(s string) bool {
	switch ZoneMode(s) {
	case ZoneModeCounting, ZoneModeIntrusion, ZoneModeLoitering:
		return true
	}
	return false
}

// MinZonePoints is the minimum vertex count for a savable polygon.
const MinZonePoints = 3

// Zone is a named polygonal region overlaid on the video frame. Points are
// stored normalized to [0,1] so the polygon stays valid regardless of the
// display resolution; this pair-array form is the canonical wire format.
type Zone struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Mode        ZoneMode         `json:"mode"`
	Points      geometry.Polygon `json:"points"`
	Confidence  float64          `json:"confidence"`  // per-zone detection threshold, 0-1
	AlertCount  int              `json:"alertCount"`  // detections needed to raise an alert
	CooldownSec int              `json:"cooldownSec"` // minimum seconds between alerts
	Color       string           `json:"color,omitempty"`
	Description string           `json:"description,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Enabled     bool             `json:"enabled"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Validate checks the structural minimum for a persistable zone: non-blank
// name, at least three normalized points, and a known mode. Point count has
// no upper bound and self-intersection is not rejected; anything further
// the detector rejects is surfaced as-is.
func (z *Zone) Validate() error {
	if strings.TrimSpace(z.Name) == "" {
		return fmt.Errorf("zone name is required")
	}
	if len(z.Points) < MinZonePoints {
		return fmt.Errorf("zone polygon needs at least %d points, has %d", MinZonePoints, len(z.Points))
	}
	if err := z.Points.ValidateNormalized(); err != nil {
		return fmt.Errorf("zone polygon: %w", err)
	}
	if z.Mode != "" && !ValidZoneMode(string(z.Mode)) {
		return fmt.Errorf("unknown zone mode: %s", z.Mode)
	}
	if z.Confidence < 0 || z.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0,1], got %g", z.Confidence)
	}
	return nil
}
