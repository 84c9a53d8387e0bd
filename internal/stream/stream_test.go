package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

func TestBroadcasterFanout(t *testing.T) {
	fb := NewFrameBroadcaster()
	id1, ch1 := fb.Subscribe()
	id2, ch2 := fb.Subscribe()
	defer fb.Unsubscribe(id1)
	defer fb.Unsubscribe(id2)

	frame := []byte{0xFF, 0xD8, 0xFF}
	fb.Publish(frame)

	for name, ch := range map[string]<-chan []byte{"client1": ch1, "client2": ch2} {
		select {
		case got := <-ch:
			if string(got) != string(frame) {
				t.Errorf("%s: wrong frame", name)
			}
		case <-time.After(time.Second):
			t.Errorf("%s: no frame received", name)
		}
	}

	if fb.ClientCount() != 2 {
		t.Errorf("expected 2 clients, got %d", fb.ClientCount())
	}
}

func TestBroadcasterDeliversLatestOnSubscribe(t *testing.T) {
	fb := NewFrameBroadcaster()
	fb.Publish([]byte("frame-1"))

	id, ch := fb.Subscribe()
	defer fb.Unsubscribe(id)

	select {
	case got := <-ch:
		if string(got) != "frame-1" {
			t.Errorf("expected cached frame, got %q", got)
		}
	case <-time.After(time.Second):
		t.Error("expected the latest frame immediately")
	}
}

func TestBroadcasterDropsForSlowClients(t *testing.T) {
	fb := NewFrameBroadcaster()
	id, ch := fb.Subscribe()
	defer fb.Unsubscribe(id)

	// Channel buffer is 2; extra publishes must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			fb.Publish([]byte(fmt.Sprintf("frame-%d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow client")
	}
	<-ch // drain one to prove the channel still works

	if fb.DroppedFrames() == 0 {
		t.Error("expected dropped frames to be counted")
	}
}

func TestSourceRelaysFrames(t *testing.T) {
	frames := [][]byte{[]byte("jpegdata-1"), []byte("jpegdata-2"), []byte("jpegdata-3")}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
		flusher := w.(http.Flusher)
		for _, f := range frames {
			fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\n\r\n")
			w.Write(f)
			fmt.Fprintf(w, "\r\n")
			flusher.Flush()
		}
	}))
	defer upstream.Close()

	fb := NewFrameBroadcaster()
	_, ch := fb.Subscribe()
	src := NewSource(upstream.URL, fb, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Run(ctx)

	select {
	case got := <-ch:
		if string(got) != "jpegdata-1" {
			t.Errorf("expected first frame, got %q", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no frame relayed from upstream")
	}

	deadline := time.Now().Add(3 * time.Second)
	for src.FrameCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if src.FrameCount() < 3 {
		t.Errorf("expected 3 frames relayed, got %d", src.FrameCount())
	}
}

func TestStatusPollerStates(t *testing.T) {
	running := true
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"running": %v, "fps": 12.5, "detections": 2, "zoneCounts": {"z1": 2}}`, running)
	}))
	defer upstream.Close()

	fb := NewFrameBroadcaster()
	src := NewSource("http://127.0.0.1:1/feed", fb, time.Minute)
	p := NewStatusPoller(upstream.URL, time.Second, 5*time.Second, src, fb.ClientCount)

	// Running upstream but no frames yet: stale.
	p.poll(context.Background())
	st := p.Status()
	if st.State != models.StreamStateStale {
		t.Errorf("expected stale, got %s", st.State)
	}
	if st.FPS != 12.5 || st.Detections != 2 || st.ZoneCounts["z1"] != 2 {
		t.Errorf("detector fields not merged: %+v", st)
	}

	// Fresh frame: live.
	src.mu.Lock()
	src.lastFrameAt = time.Now()
	src.mu.Unlock()
	p.poll(context.Background())
	if st := p.Status(); st.State != models.StreamStateLive {
		t.Errorf("expected live, got %s", st.State)
	}

	// Pipeline reports stopped: offline.
	running = false
	p.poll(context.Background())
	if st := p.Status(); st.State != models.StreamStateOffline {
		t.Errorf("expected offline, got %s", st.State)
	}
}

func TestStatusPollerOfflineOnError(t *testing.T) {
	fb := NewFrameBroadcaster()
	src := NewSource("http://127.0.0.1:1/feed", fb, time.Minute)
	p := NewStatusPoller("http://127.0.0.1:1/status", time.Second, 5*time.Second, src, fb.ClientCount)

	p.poll(context.Background())
	st := p.Status()
	if st.State != models.StreamStateOffline || st.Running {
		t.Errorf("expected offline status, got %+v", st)
	}
	if st.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt set even when offline")
	}
}
