package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventNodeAdded        EventType = "node_added"
	EventNodeDeleted      EventType = "node_deleted"
	EventEdgeAdded        EventType = "edge_added"
	EventEdgeDeleted      EventType = "edge_deleted"
	EventValueChanged     EventType = "value_changed"
	EventPositionChanged  EventType = "position_changed"
	EventCircuitReset     EventType = "circuit_reset"
	EventCircuitSimulated EventType = "circuit_simulated"
	EventCircuitImported  EventType = "circuit_imported"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Circuit string      `json:"circuit"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

// EventName returns the SSE event name
func (e Event) EventName() string {
	return string(e.Type)
}

// CircuitName returns the circuit the event belongs to
func (e Event) CircuitName() string {
	return e.Circuit
}
