package models

import "time"

// EventLevel is the severity of an event log row.
type EventLevel string

const (
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelAlert   EventLevel = "alert"
	LevelError   EventLevel = "error"
)

// EventSource identifies which subsystem produced an event.
type EventSource string

const (
	SourceDetector EventSource = "detector"
	SourceEditor   EventSource = "editor"
	SourceAuth     EventSource = "auth"
	SourceSystem   EventSource = "system"
)

// Event is one row of the system log: detector detections, zone alerts,
// auth activity, and console lifecycle messages share this shape.
type Event struct {
	ID         int64       `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Level      EventLevel  `json:"level"`
	Source     EventSource `json:"source"`
	ZoneID     string      `json:"zoneId,omitempty"`
	Label      string      `json:"label,omitempty"` // detected class name
	Confidence float64     `json:"confidence,omitempty"`
	Count      int         `json:"count,omitempty"` // objects in zone at event time
	Message    string      `json:"message"`
}
