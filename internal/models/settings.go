package models

import "fmt"

// Settings holds the tunable detection and console parameters. A subset
// (confidence, IOU, target FPS) is forwarded to the detector on update;
// the rest only affects the console.
type Settings struct {
	Confidence    float64 `json:"confidence" yaml:"confidence"` // global detection threshold, 0-1
	IOU           float64 `json:"iou" yaml:"iou"`               // non-max-suppression overlap, 0-1
	TargetFPS     int     `json:"targetFps" yaml:"targetFps"`
	FrameWidth    int     `json:"frameWidth" yaml:"frameWidth"`
	FrameHeight   int     `json:"frameHeight" yaml:"frameHeight"`
	RetentionDays int     `json:"retentionDays" yaml:"retentionDays"` // event log retention
	NotifyOnAlert bool    `json:"notifyOnAlert" yaml:"notifyOnAlert"`
}

// DefaultSettings returns the settings used until an admin changes them.
func DefaultSettings() Settings {
	return Settings{
		Confidence:    0.5,
		IOU:           0.45,
		TargetFPS:     15,
		FrameWidth:    640,
		FrameHeight:   480,
		RetentionDays: 14,
		NotifyOnAlert: true,
	}
}

// Validate rejects out-of-range values before they reach the detector.
func (s Settings) Validate() error {
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0,1], got %g", s.Confidence)
	}
	if s.IOU < 0 || s.IOU > 1 {
		return fmt.Errorf("iou must be within [0,1], got %g", s.IOU)
	}
	if s.TargetFPS < 1 || s.TargetFPS > 60 {
		return fmt.Errorf("targetFps must be within [1,60], got %d", s.TargetFPS)
	}
	if s.FrameWidth < 64 || s.FrameHeight < 64 {
		return fmt.Errorf("frame size %dx%d is too small", s.FrameWidth, s.FrameHeight)
	}
	if s.RetentionDays < 1 {
		return fmt.Errorf("retentionDays must be at least 1, got %d", s.RetentionDays)
	}
	return nil
}
