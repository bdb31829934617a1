// Package handler implements the HTTP API of the circuit simulator.
//
// CircuitHandler maps REST requests onto a service.CircuitService. Request
// bodies are decoded from JSON and validated with go-playground/validator;
// element types and handle strings ("source#0", "target#1") are checked by
// custom validators before the service sees them.
//
// # Response Format
//
// Success responses return JSON views of nodes, edges or the whole circuit.
// Error responses return JSON with {error, details}. A missing node or edge
// maps to 404, a feedback loop to 422, and a bad handle, type or format to 400.
// A mutation that leaves the circuit cyclic is kept; the 422 reports it.
//
// # Server-Sent Events
//
// NewRouter mounts the /events stream served by package hub and the
// Prometheus /metrics endpoint next to the API.
package handler
