// Package stream connects the console to the detector pipeline: it
// relays the annotated MJPEG feed to browser clients and polls the
// pipeline status endpoint.
package stream

import (
	"sync"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
)

// FrameBroadcaster manages fanout of JPEG frames to multiple clients.
type FrameBroadcaster struct {
	mu      sync.Mutex
	clients map[int]chan []byte
	nextID  int
	latest  []byte
	dropped int64
}

// NewFrameBroadcaster creates an empty broadcaster.
func NewFrameBroadcaster() *FrameBroadcaster {
	return &FrameBroadcaster{
		clients: make(map[int]chan []byte),
	}
}

// Subscribe adds a new client and returns a channel for receiving frames.
// The latest frame, if any, is delivered immediately.
func (fb *FrameBroadcaster) Subscribe() (int, <-chan []byte) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	id := fb.nextID
	fb.nextID++
	ch := make(chan []byte, 2) // Buffer 2 frames to avoid blocking
	fb.clients[id] = ch
	if fb.latest != nil {
		ch <- fb.latest
	}

	logger.Debug("Broadcaster", "Client #%d subscribed (total clients: %d)", id, len(fb.clients))
	return id, ch
}

// Unsubscribe removes a client.
func (fb *FrameBroadcaster) Unsubscribe(id int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if ch, ok := fb.clients[id]; ok {
		close(ch)
		delete(fb.clients, id)
		logger.Debug("Broadcaster", "Client #%d unsubscribed (remaining clients: %d)", id, len(fb.clients))
	}
}

// Publish fans a frame out to all clients. Slow clients skip frames
// rather than blocking the feed.
func (fb *FrameBroadcaster) Publish(frame []byte) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.latest = frame
	for id, ch := range fb.clients {
		select {
		case ch <- frame:
		default:
			fb.dropped++
			logger.Debug("Broadcaster", "Client #%d slow, dropping frame", id)
		}
	}
}

// DroppedFrames returns the number of frames skipped for slow clients.
func (fb *FrameBroadcaster) DroppedFrames() int64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.dropped
}

// Latest returns the most recently published frame, or nil.
func (fb *FrameBroadcaster) Latest() []byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.latest
}

// ClientCount returns the number of connected clients.
func (fb *FrameBroadcaster) ClientCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.clients)
}

// Close disconnects all clients.
func (fb *FrameBroadcaster) Close() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for id, ch := range fb.clients {
		close(ch)
		delete(fb.clients, id)
	}
}
