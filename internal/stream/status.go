package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// detectorStatus is the JSON shape reported by the pipeline.
type detectorStatus struct {
	Running     bool           `json:"running"`
	FPS         float64        `json:"fps"`
	FrameWidth  int            `json:"frameWidth"`
	FrameHeight int            `json:"frameHeight"`
	Detections  int            `json:"detections"`
	ZoneCounts  map[string]int `json:"zoneCounts"`
}

// StatusPoller periodically fetches the detector status endpoint and
// keeps a merged snapshot for the dashboard.
type StatusPoller struct {
	url        string
	interval   time.Duration
	staleAfter time.Duration
	source     *Source
	clients    func() int
	client     *http.Client

	mu     sync.RWMutex
	status models.StreamStatus
}

// NewStatusPoller creates a poller. clients reports the current MJPEG
// subscriber count.
func NewStatusPoller(url string, interval, staleAfter time.Duration, source *Source, clients func() int) *StatusPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if staleAfter <= 0 {
		staleAfter = 5 * time.Second
	}
	return &StatusPoller{
		url:        url,
		interval:   interval,
		staleAfter: staleAfter,
		source:     source,
		clients:    clients,
		client:     &http.Client{Timeout: interval},
		status:     models.StreamStatus{State: models.StreamStateOffline},
	}
}

// Run polls until the context is cancelled.
func (p *StatusPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context) {
	ds, err := p.fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.status.UpdatedAt = now
	p.status.Clients = p.clients()
	p.status.LastFrameAt = p.source.LastFrameAt()

	if err != nil {
		p.status.State = models.StreamStateOffline
		p.status.Running = false
		p.status.FPS = 0
		p.status.Detections = 0
		return
	}

	p.status.Running = ds.Running
	p.status.FPS = ds.FPS
	p.status.FrameWidth = ds.FrameWidth
	p.status.FrameHeight = ds.FrameHeight
	p.status.Detections = ds.Detections
	p.status.ZoneCounts = ds.ZoneCounts

	switch {
	case !ds.Running:
		p.status.State = models.StreamStateOffline
	case p.status.LastFrameAt.IsZero() || now.Sub(p.status.LastFrameAt) > p.staleAfter:
		p.status.State = models.StreamStateStale
	default:
		p.status.State = models.StreamStateLive
	}
}

func (p *StatusPoller) fetch(ctx context.Context) (*detectorStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var ds detectorStatus
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &ds, nil
}

// Status returns the latest snapshot.
func (p *StatusPoller) Status() models.StreamStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Forward sends a control request (pause, resume, reload) to the
// detector and returns its response body.
func Forward(ctx context.Context, client *http.Client, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	logger.Debug("Stream", "forwarded control %s -> %d", url, resp.StatusCode)
	return body, resp.StatusCode, nil
}
