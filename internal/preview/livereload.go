package preview

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/docsmith/docsmith/internal/logfields"
)

// ReloadHub manages SSE clients and broadcasts a reload event after each
// successful rebuild.
type ReloadHub struct {
	mu      sync.RWMutex
	nextID  int
	clients map[int]chan string
	closed  bool
}

// NewReloadHub returns an empty hub.
func NewReloadHub() *ReloadHub {
	return &ReloadHub{clients: map[int]chan string{}}
}

// ServeHTTP implements the SSE endpoint at /livereload.
func (h *ReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.clients[id] = ch
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
	}()

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(": connected\n\n"); err != nil {
		return
	}
	if err := bw.Flush(); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := bw.WriteString(": ping\n\n"); err != nil {
				return
			}
			if err := bw.Flush(); err != nil {
				return
			}
			flusher.Flush()
		case buildID, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(bw, "data: {\"build_id\":%q}\n\n", buildID); err != nil {
				return
			}
			if err := bw.Flush(); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// Broadcast notifies all connected clients that a build finished.
func (h *ReloadHub) Broadcast(buildID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- buildID:
		default:
			// Slow client; it reloads on the next event.
		}
	}
	slog.Debug("Reload broadcast", logfields.BuildID(buildID), logfields.Count(len(h.clients)))
}

// Close stops accepting clients and disconnects existing ones.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

// ClientCount reports the current number of connected clients.
func (h *ReloadHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// reloadScript is served at /livereload.js and injected by the live-reload
// layout flag.
const reloadScript = `(function () {
  var source = new EventSource("/livereload");
  source.onmessage = function () { location.reload(); };
  source.onerror = function () {
    source.close();
    setTimeout(function () { location.reload(); }, 2000);
  };
})();
`
