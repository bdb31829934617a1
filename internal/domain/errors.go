package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKind      = errors.New("domain: unknown element kind")
	ErrNotGate          = errors.New("domain: element is not a gate")
	ErrNotInput         = errors.New("domain: element is not an input")
	ErrHandleOutOfRange = errors.New("domain: handle out of range")
	ErrInvalidHandle    = errors.New("domain: invalid handle")
	ErrCyclicGraph      = errors.New("domain: cyclic graph")
	ErrNodeNotFound     = errors.New("domain: node not found")
	ErrEdgeNotFound     = errors.New("domain: edge not found")
)

// HandleError reports a write to an input slot the element does not declare
type HandleError struct {
	ElementID string
	Handle    int
	Limit     int
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("domain: handle %d out of range for %s (has %d inputs)", e.Handle, e.ElementID, e.Limit)
}

// Is matches ErrHandleOutOfRange
func (e *HandleError) Is(target error) bool {
	return target == ErrHandleOutOfRange
}

// CycleError reports a feedback loop found during evaluation.
// Path starts and ends with the re-entered node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "domain: cyclic graph: " + strings.Join(e.Path, " -> ")
}

// Is matches ErrCyclicGraph
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicGraph
}
