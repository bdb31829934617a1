package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logicsim/internal/domain"
	"logicsim/internal/service"
)

type testServer struct {
	t      *testing.T
	svc    *service.CircuitService
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewCircuitService(nil, nil, service.Options{
		Metrics: service.NewMetrics(reg),
		Logger:  logger,
	})
	h := NewCircuitHandler(svc, logger)
	mux := NewRouter(h, nil, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &testServer{t: t, svc: svc, router: Chain(mux, Recover(logger), CORS, Logger(logger))}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func (s *testServer) addNode(kind string) domain.NodeView {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/nodes", map[string]any{"type": kind, "position": map[string]float64{"x": 10, "y": 20}})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[domain.NodeView](s.t, rec)
}

func (s *testServer) addEdge(source, target, sh, th string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodPost, "/api/edges", EdgeRequest{Source: source, Target: target, SourceHandle: sh, TargetHandle: th})
}

func TestCircuitFlow(t *testing.T) {
	s := newTestServer(t)

	btn := s.addNode("BUTTON")
	not := s.addNode("NOT")
	assert.Equal(t, domain.Position{X: 10, Y: 20}, btn.Position)

	rec := s.addEdge(btn.ID, not.ID, "source#0", "target#0")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	edge := decodeBody[domain.EdgeView](t, rec)
	assert.Equal(t, "source#0", edge.SourceHandle)
	assert.Equal(t, "target#0", edge.TargetHandle)

	rec = s.do(http.MethodPut, "/api/nodes/"+btn.ID+"/value", map[string]bool{"value": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []bool{true}, decodeBody[domain.NodeView](t, rec).Outputs)

	rec = s.do(http.MethodGet, "/api/nodes/"+not.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{false}, decodeBody[domain.NodeView](t, rec).Outputs)

	rec = s.do(http.MethodGet, "/api/circuit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[domain.GraphView](t, rec)
	assert.Len(t, view.Nodes, 2)
	require.Len(t, view.Edges, 1)
	assert.True(t, view.Edges[0].Value)

	t.Run("wire format", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/nodes", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var raw []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		require.Len(t, raw, 2)
		assert.Contains(t, raw[0], "inputsValue")
		assert.Contains(t, raw[0], "outputsValue")
		assert.Contains(t, raw[0], "position")
	})

	t.Run("move", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/nodes/"+not.ID+"/position", map[string]float64{"x": 5, "y": 6})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, domain.Position{X: 5, Y: 6}, decodeBody[domain.NodeView](t, rec).Position)
	})

	t.Run("delete edge", func(t *testing.T) {
		q := url.Values{
			"source":       {btn.ID},
			"target":       {not.ID},
			"sourceHandle": {"source#0"},
			"targetHandle": {"target#0"},
		}
		rec := s.do(http.MethodDelete, "/api/edges?"+q.Encode(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = s.do(http.MethodDelete, "/api/edges?"+q.Encode(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete node", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/nodes/"+btn.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = s.do(http.MethodGet, "/api/nodes/"+btn.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("reset", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/circuit", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, s.svc.Nodes())
	})
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t)
	and := s.addNode("AND")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"malformed body", http.MethodPost, "/api/nodes", "{", http.StatusBadRequest},
		{"missing type", http.MethodPost, "/api/nodes", map[string]any{}, http.StatusBadRequest},
		{"unknown type", http.MethodPost, "/api/nodes", map[string]any{"type": "MUX"}, http.StatusBadRequest},
		{"bad source handle", http.MethodPost, "/api/edges", EdgeRequest{Source: and.ID, Target: and.ID, SourceHandle: "target#0", TargetHandle: "target#0"}, http.StatusBadRequest},
		{"missing edge target", http.MethodPost, "/api/edges", EdgeRequest{Source: and.ID, SourceHandle: "source#0", TargetHandle: "target#0"}, http.StatusBadRequest},
		{"unknown edge endpoint", http.MethodPost, "/api/edges", EdgeRequest{Source: "ghost", Target: and.ID, SourceHandle: "source#0", TargetHandle: "target#0"}, http.StatusNotFound},
		{"slot out of range", http.MethodPost, "/api/edges", EdgeRequest{Source: and.ID, Target: and.ID, SourceHandle: "source#0", TargetHandle: "target#5"}, http.StatusBadRequest},
		{"value missing", http.MethodPut, "/api/nodes/" + and.ID + "/value", map[string]any{}, http.StatusBadRequest},
		{"value of unknown node", http.MethodPut, "/api/nodes/ghost/value", map[string]bool{"value": true}, http.StatusNotFound},
		{"position missing y", http.MethodPut, "/api/nodes/" + and.ID + "/position", map[string]float64{"x": 1}, http.StatusBadRequest},
		{"delete edge without query", http.MethodDelete, "/api/edges", nil, http.StatusBadRequest},
		{"unknown export format", http.MethodGet, "/api/export/xml", nil, http.StatusBadRequest},
		{"unknown import format", http.MethodPost, "/api/import/xml", "{}", http.StatusBadRequest},
		{"malformed import", http.MethodPost, "/api/import/json", "{nodes:", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeBody[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestCycleIsUnprocessable(t *testing.T) {
	s := newTestServer(t)
	a := s.addNode("OR")
	b := s.addNode("OR")

	require.Equal(t, http.StatusCreated, s.addEdge(a.ID, b.ID, "source#0", "target#0").Code)

	rec := s.addEdge(b.ID, a.ID, "source#0", "target#0")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Details, "cyclic")

	// the loop was refused, so the circuit still settles
	rec = s.do(http.MethodGet, "/api/edges", nil)
	assert.Len(t, decodeBody[[]domain.EdgeView](t, rec), 1)
	rec = s.do(http.MethodPost, "/api/simulate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImportExport(t *testing.T) {
	s := newTestServer(t)
	in := s.addNode("CONSTANT")
	not := s.addNode("NOT")
	require.Equal(t, http.StatusCreated, s.addEdge(in.ID, not.ID, "source#0", "target#0").Code)

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			rec := s.do(http.MethodGet, "/api/export/"+format, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=default.")
			exported := rec.Body.String()
			assert.Contains(t, exported, "PositionableClass")

			other := newTestServer(t)
			rec = other.do(http.MethodPost, "/api/import/"+format, exported)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			result := decodeBody[service.ImportResult](t, rec)
			assert.Equal(t, 2, result.Nodes)
			assert.Equal(t, 1, result.Edges)
			assert.Equal(t, s.svc.Nodes(), other.svc.Nodes())
		})
	}
}

func TestListCircuitsWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/circuits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMetricsAndHealth(t *testing.T) {
	s := newTestServer(t)
	s.addNode("XOR")

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `logicsim_circuit_simulations_total{result="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "logicsim_circuit_nodes 1")

	rec = s.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])
}

func TestMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("recover", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}), Recover(logger))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		h := Chain(http.NotFoundHandler(), CORS)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/nodes", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("chain order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		h := Chain(http.NotFoundHandler(), mark("outer"), mark("inner"))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"outer", "inner"}, order)
	})

	t.Run("logger records status", func(t *testing.T) {
		var buf bytes.Buffer
		h := Chain(http.NotFoundHandler(), Logger(slog.New(slog.NewTextHandler(&buf, nil))))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Contains(t, buf.String(), "status=404")
		assert.Contains(t, buf.String(), "path=/missing")
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrEdgeNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&domain.CycleError{Path: []string{"a", "a"}}))
	assert.Equal(t, http.StatusBadRequest, statusFor(&domain.HandleError{Handle: 3, Limit: 2}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
