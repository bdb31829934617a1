package handler

import "net/http"

// NewRouter registers the circuit API, the event stream and the metrics
// endpoint. events and metrics may be nil.
func NewRouter(h *CircuitHandler, events, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	// Circuit
	mux.HandleFunc("GET /api/circuit", h.GetCircuit)
	mux.HandleFunc("DELETE /api/circuit", h.ResetCircuit)
	mux.HandleFunc("GET /api/circuits", h.ListCircuits)
	mux.HandleFunc("POST /api/simulate", h.Simulate)

	// Nodes
	mux.HandleFunc("GET /api/nodes", h.ListNodes)
	mux.HandleFunc("POST /api/nodes", h.CreateNode)
	mux.HandleFunc("GET /api/nodes/{id}", h.GetNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", h.DeleteNode)
	mux.HandleFunc("PUT /api/nodes/{id}/value", h.SetValue)
	mux.HandleFunc("PUT /api/nodes/{id}/position", h.SetPosition)

	// Edges
	mux.HandleFunc("GET /api/edges", h.ListEdges)
	mux.HandleFunc("POST /api/edges", h.CreateEdge)
	mux.HandleFunc("DELETE /api/edges", h.DeleteEdge)

	// Import/Export
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("POST /api/import/{format}", h.Import)

	if events != nil {
		mux.Handle("GET /events", events)
	}
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	mux.HandleFunc("GET /healthz", h.Healthz)

	return mux
}
