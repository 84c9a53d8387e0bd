package models

import "time"

// SnapshotInfo describes a JPEG still captured from the live feed.
// Snapshots back the zone editor canvas and serve as alert evidence.
type SnapshotInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ZoneID     string    `json:"zoneId,omitempty"`
	Size       int64     `json:"size"`
	CapturedAt time.Time `json:"capturedAt"`
}
