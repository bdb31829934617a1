package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"logicsim/internal/codec"
	"logicsim/internal/domain"
	"logicsim/internal/service"
)

// maxImportBytes bounds the size of an imported document
const maxImportBytes = 10 << 20

// CircuitHandler handles circuit API requests
type CircuitHandler struct {
	svc    *service.CircuitService
	logger *slog.Logger
}

// NewCircuitHandler creates a new circuit handler
func NewCircuitHandler(svc *service.CircuitService, logger *slog.Logger) *CircuitHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CircuitHandler{svc: svc, logger: logger}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetCircuit returns the complete circuit
func (h *CircuitHandler) GetCircuit(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Circuit(), http.StatusOK)
}

// ResetCircuit removes every node and edge
func (h *CircuitHandler) ResetCircuit(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to reset circuit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCircuits returns the stored circuits
func (h *CircuitHandler) ListCircuits(w http.ResponseWriter, r *http.Request) {
	circuits, err := h.svc.Circuits(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list circuits", err)
		return
	}
	h.writeJSON(w, circuits, http.StatusOK)
}

// Simulate recomputes the circuit
func (h *CircuitHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Simulate(r.Context())
	if err != nil {
		h.writeServiceError(w, "Simulation failed", err)
		return
	}
	h.writeJSON(w, view, http.StatusOK)
}

// ListNodes returns all nodes
func (h *CircuitHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Nodes(), http.StatusOK)
}

// GetNode returns a single node
func (h *CircuitHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.Node(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// CreateNode places a new element
func (h *CircuitHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	node, err := h.svc.AddNode(r.Context(), req.Type, req.Position)
	if err != nil {
		h.writeServiceError(w, "Failed to create node", err)
		return
	}
	h.writeJSON(w, node, http.StatusCreated)
}

// DeleteNode deletes a node and its edges
func (h *CircuitHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, "Failed to delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetValue sets the output of an input element
func (h *CircuitHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	var req SetValueRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	if err := h.svc.SetValue(r.Context(), id, *req.Value); err != nil {
		h.writeServiceError(w, "Failed to set value", err)
		return
	}

	node, err := h.svc.Node(id)
	if err != nil {
		h.writeServiceError(w, "Failed to get node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// SetPosition moves a node
func (h *CircuitHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	var req SetPositionRequest
	if !h.decode(w, r, &req) {
		return
	}

	node, err := h.svc.SetPosition(r.Context(), r.PathValue("id"), *req.X, *req.Y)
	if err != nil {
		h.writeServiceError(w, "Failed to set position", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// ListEdges returns all edges
func (h *CircuitHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Edges(), http.StatusOK)
}

// CreateEdge wires two nodes
func (h *CircuitHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if !h.decode(w, r, &req) {
		return
	}

	edge, err := h.svc.AddEdge(r.Context(), req.Source, req.Target, req.SourceHandle, req.TargetHandle)
	if err != nil {
		h.writeServiceError(w, "Failed to create edge", err)
		return
	}
	h.writeJSON(w, edge, http.StatusCreated)
}

// DeleteEdge removes an edge named by query parameters
// source, target, sourceHandle and targetHandle
func (h *CircuitHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := EdgeRequest{
		Source:       q.Get("source"),
		Target:       q.Get("target"),
		SourceHandle: q.Get("sourceHandle"),
		TargetHandle: q.Get("targetHandle"),
	}
	if err := validate.Struct(&req); err != nil {
		h.writeError(w, "Invalid request", validationDetails(err), http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteEdge(r.Context(), req.Source, req.Target, req.SourceHandle, req.TargetHandle); err != nil {
		h.writeServiceError(w, "Failed to delete edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export writes the circuit document in the format named by the path
func (h *CircuitHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	c, err := codec.ForFormat(format)
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	ext := "json"
	contentType := "application/json"
	if c.Format() == "yaml" {
		ext = "yml"
		contentType = "application/x-yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", h.svc.Name(), ext))

	if err := h.svc.Export(r.Context(), w, format); err != nil {
		// Can't write error response as we already set headers
		h.logger.Error("failed to export circuit", "format", format, "error", err)
	}
}

// Import replaces the circuit with the request body
func (h *CircuitHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)

	result, err := h.svc.Import(r.Context(), body, r.PathValue("format"))
	if err != nil {
		h.writeServiceError(w, "Failed to import circuit", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// Healthz reports liveness
func (h *CircuitHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok", "circuit": h.svc.Name()}, http.StatusOK)
}

// Helper methods

// decode reads and validates a JSON body; it writes the error response itself
func (h *CircuitHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.writeError(w, "Invalid request", validationDetails(err), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrEdgeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCyclicGraph):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrHandleOutOfRange),
		errors.Is(err, domain.ErrInvalidHandle),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, codec.ErrUnknownFormat),
		errors.Is(err, codec.ErrUnregisteredClass),
		errors.Is(err, codec.ErrMalformedDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *CircuitHandler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
	}
	h.writeError(w, msg, err.Error(), status)
}

func (h *CircuitHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *CircuitHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
