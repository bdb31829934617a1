// Package hub streams circuit events to editors over Server-Sent Events.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Named is implemented by events that carry an SSE event name
type Named interface {
	EventName() string
}

// Scoped is implemented by events that belong to one circuit
type Scoped interface {
	CircuitName() string
}

// CircuitParam is the query parameter restricting a stream to one circuit
const CircuitParam = "circuit"

// subscriber is one open event stream
type subscriber struct {
	id      string
	circuit string // empty receives every circuit
	frames  chan []byte
}

// wants reports whether the subscriber follows the circuit of an event
func (s *subscriber) wants(circuit string) bool {
	return s.circuit == "" || circuit == "" || s.circuit == circuit
}

// frame is an encoded event and the circuit it belongs to
type frame struct {
	circuit string
	data    []byte
}

// Hub fans events out to the open streams
type Hub struct {
	mu        sync.RWMutex
	subs      map[*subscriber]struct{}
	join      chan *subscriber
	leave     chan *subscriber
	frames    chan frame
	keepAlive time.Duration
	logger    *slog.Logger
}

// New creates a new Hub
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:      make(map[*subscriber]struct{}),
		join:      make(chan *subscriber),
		leave:     make(chan *subscriber),
		frames:    make(chan frame, 256),
		keepAlive: 30 * time.Second,
		logger:    logger.With("component", "sse"),
	}
}

// WithKeepAlive sets the interval between keep-alive comments
func (h *Hub) WithKeepAlive(d time.Duration) *Hub {
	if d > 0 {
		h.keepAlive = d
	}
	return h
}

// Run owns the subscriber set and returns when ctx is done, closing every
// open stream
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for s := range h.subs {
				delete(h.subs, s)
				close(s.frames)
			}
			h.mu.Unlock()
			return

		case s := <-h.join:
			h.mu.Lock()
			h.subs[s] = struct{}{}
			total := len(h.subs)
			h.mu.Unlock()
			h.logger.Debug("stream opened", "client", s.id, "circuit", s.circuit, "total", total)

		case s := <-h.leave:
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.frames)
			}
			total := len(h.subs)
			h.mu.Unlock()
			h.logger.Debug("stream closed", "client", s.id, "total", total)

		case f := <-h.frames:
			h.fanout(f)
		}
	}
}

// fanout delivers a frame without waiting on slow streams
func (h *Hub) fanout(f frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.wants(f.circuit) {
			continue
		}
		select {
		case s.frames <- f.data:
		default:
			h.logger.Warn("stream is slow, dropping event", "client", s.id)
		}
	}
}

// encode renders one SSE frame
func encode(event interface{}) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	if n, ok := event.(Named); ok {
		return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", n.EventName(), data)), nil
	}
	return []byte(fmt.Sprintf("data: %s\n\n", data)), nil
}

// Broadcast queues an event for every stream following its circuit.
// The event is dropped when the queue is full.
func (h *Hub) Broadcast(event interface{}) {
	data, err := encode(event)
	if err != nil {
		h.logger.Error("failed to marshal event", "error", err)
		return
	}
	f := frame{data: data}
	if s, ok := event.(Scoped); ok {
		f.circuit = s.CircuitName()
	}

	select {
	case h.frames <- f:
	default:
		h.logger.Warn("event queue full, dropping event")
	}
}

// Forward broadcasts every value received on events until ctx is done or
// events is closed
func Forward[T any](ctx context.Context, h *Hub, events <-chan T) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Broadcast(ev)
		}
	}
}

// ClientCount returns the number of open streams
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeHTTP opens an event stream. ?circuit=<name> limits it to one circuit.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	s := &subscriber{
		id:      uuid.NewString(),
		circuit: r.URL.Query().Get(CircuitParam),
		frames:  make(chan []byte, 64),
	}

	select {
	case h.join <- s:
	case <-r.Context().Done():
		return
	}
	defer func() {
		select {
		case h.leave <- s:
		case <-time.After(time.Second):
		}
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-s.frames:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
		flusher.Flush()
	}
}
