package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Type string `json:"type"`
}

func (e testEvent) EventName() string { return e.Type }

type scopedEvent struct {
	Circuit string `json:"circuit"`
}

func (e scopedEvent) CircuitName() string { return e.Circuit }

func TestEncode(t *testing.T) {
	t.Run("named event", func(t *testing.T) {
		msg, err := encode(testEvent{Type: "node_added"})
		require.NoError(t, err)
		assert.Equal(t, "event: node_added\ndata: {\"type\":\"node_added\"}\n\n", string(msg))
	})

	t.Run("plain value", func(t *testing.T) {
		msg, err := encode(map[string]int{"n": 1})
		require.NoError(t, err)
		assert.Equal(t, "data: {\"n\":1}\n\n", string(msg))
	})

	t.Run("unencodable value", func(t *testing.T) {
		_, err := encode(make(chan int))
		assert.Error(t, err)
	})
}

func TestHubStreamsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(nil).WithKeepAlive(time.Hour)
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	reqCtx, reqCancel := context.WithCancel(ctx)
	defer reqCancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	events := make(chan testEvent, 1)
	go Forward(ctx, h, events)
	events <- testEvent{Type: "circuit_reset"}

	var frame []string
	for len(frame) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			frame = append(frame, line)
		}
	}
	assert.Equal(t, []string{"event: circuit_reset", `data: {"type":"circuit_reset"}`}, frame)

	reqCancel()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubScopesByCircuit(t *testing.T) {
	h := New(nil)
	all := &subscriber{id: "all", frames: make(chan []byte, 4)}
	adder := &subscriber{id: "adder", circuit: "adder", frames: make(chan []byte, 4)}
	h.subs[all] = struct{}{}
	h.subs[adder] = struct{}{}

	h.Broadcast(scopedEvent{Circuit: "mux"})
	f := <-h.frames
	assert.Equal(t, "mux", f.circuit)
	h.fanout(f)
	assert.Len(t, all.frames, 1)
	assert.Len(t, adder.frames, 0)

	h.fanout(frame{circuit: "adder", data: []byte("x")})
	h.fanout(frame{data: []byte("y")})
	assert.Len(t, all.frames, 3)
	assert.Len(t, adder.frames, 2)
}

func TestHubDropsForSlowStream(t *testing.T) {
	h := New(nil)
	slow := &subscriber{id: "slow", frames: make(chan []byte, 1)}
	h.subs[slow] = struct{}{}

	h.fanout(frame{data: []byte("a")})
	h.fanout(frame{data: []byte("b")})
	assert.Equal(t, "a", string(<-slow.frames))
	assert.Len(t, slow.frames, 0)
}

func TestHubNoFlusher(t *testing.T) {
	h := New(nil)
	w := &plainWriter{header: http.Header{}}
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusInternalServerError, w.status)
}

// plainWriter is a ResponseWriter without http.Flusher
type plainWriter struct {
	header http.Header
	status int
}

func (w *plainWriter) Header() http.Header         { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *plainWriter) WriteHeader(status int)      { w.status = status }
