package stream

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
)

// Source pulls the detector's MJPEG feed and republishes each frame to
// the broadcaster. The connection is retried with a fixed backoff, so
// the console survives pipeline restarts.
type Source struct {
	url         string
	broadcaster *FrameBroadcaster
	client      *http.Client
	reconnect   time.Duration

	mu          sync.Mutex
	connected   bool
	lastFrameAt time.Time
	frameCount  int64
}

// NewSource creates a source for the given MJPEG URL.
func NewSource(url string, broadcaster *FrameBroadcaster, reconnect time.Duration) *Source {
	if reconnect <= 0 {
		reconnect = 3 * time.Second
	}
	return &Source{
		url:         url,
		broadcaster: broadcaster,
		client:      &http.Client{}, // no timeout, the stream is long-lived
		reconnect:   reconnect,
	}
}

// Run connects and relays frames until the context is cancelled.
func (s *Source) Run(ctx context.Context) {
	for {
		err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("Stream", "detector feed lost: %v (reconnecting in %s)", err, s.reconnect)
		}
		s.setConnected(false)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnect):
		}
	}
}

func (s *Source) consume(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector returned status %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("bad content type: %w", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return fmt.Errorf("expected multipart stream, got %s", mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return fmt.Errorf("multipart stream without boundary")
	}

	logger.Info("Stream", "connected to detector feed at %s", s.url)
	s.setConnected(true)

	reader := multipart.NewReader(resp.Body, boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return fmt.Errorf("stream ended")
		}
		if err != nil {
			return err
		}

		frame, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return err
		}
		if len(frame) == 0 {
			continue
		}

		s.mu.Lock()
		s.lastFrameAt = time.Now()
		s.frameCount++
		s.mu.Unlock()

		s.broadcaster.Publish(frame)
	}
}

func (s *Source) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

// Connected reports whether the upstream feed is currently attached.
func (s *Source) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// LastFrameAt returns the arrival time of the most recent frame.
func (s *Source) LastFrameAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFrameAt
}

// FrameCount returns the number of frames relayed since startup.
func (s *Source) FrameCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}
