// Package service implements the circuit editing session.
//
// CircuitService sits between the HTTP handlers and the repository. It owns
// one in-memory graph and serializes every operation on it.
//
// # Settling
//
// Each mutation settles the circuit before returning: the graph is
// simulated, the document is saved to the repository and an Event is
// published on the EventBus. Position changes skip the simulation.
//
// # Event System
//
// The EventBus fans events out to subscribers without blocking; the server
// forwards them to the SSE hub so connected editors redraw.
package service
