package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jonathan/resume-matcher/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is not browser-origin bound; access control happens in
	// the API key middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// progressHub fans pipeline progress events out to websocket
// subscribers, keyed by the session ID of an asynchronous batch.
type progressHub struct {
	mu   sync.Mutex
	subs map[uuid.UUID][]chan pipeline.ProgressEvent
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[uuid.UUID][]chan pipeline.ProgressEvent)}
}

// Subscribe registers a listener for a session's progress. The returned
// cancel func must be called when the listener goes away.
func (h *progressHub) Subscribe(id uuid.UUID) (<-chan pipeline.ProgressEvent, func()) {
	ch := make(chan pipeline.ProgressEvent, 16)
	h.mu.Lock()
	h.subs[id] = append(h.subs[id], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		listeners := h.subs[id]
		for i, c := range listeners {
			if c == ch {
				h.subs[id] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
	return ch, cancel
}

// Publish delivers an event to all listeners of a session. Slow
// listeners drop events rather than blocking a worker.
func (h *progressHub) Publish(id uuid.UUID, event pipeline.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[id] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close ends a session's stream by closing all listener channels.
func (h *progressHub) Close(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[id] {
		close(ch)
	}
	delete(h.subs, id)
}

// handleProgress streams progress events of an asynchronous batch over
// a websocket until the batch finishes or the client disconnects.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	events, cancel := s.hub.Subscribe(id)
	defer cancel()

	// Drain client reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "batch complete"))
}
