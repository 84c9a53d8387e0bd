package models

import "time"

// StreamState describes the freshness of the cached detector status.
type StreamState string

const (
	StreamStateLive    StreamState = "live"
	StreamStateStale   StreamState = "stale"
	StreamStateOffline StreamState = "offline"
)

// StreamStatus is the last status report obtained from the detector,
// merged with what the relay itself observes. Served to the dashboard
// which polls it at a fixed interval.
type StreamStatus struct {
	State       StreamState    `json:"state"`
	Running     bool           `json:"running"`
	FPS         float64        `json:"fps"`
	FrameWidth  int            `json:"frameWidth,omitempty"`
	FrameHeight int            `json:"frameHeight,omitempty"`
	Detections  int            `json:"detections"`           // objects in the latest frame
	ZoneCounts  map[string]int `json:"zoneCounts,omitempty"` // zone id -> current count
	Clients     int            `json:"clients"`              // MJPEG subscribers
	LastFrameAt time.Time      `json:"lastFrameAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
