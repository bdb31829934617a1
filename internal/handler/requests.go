package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"logicsim/internal/domain"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// validate is the validator instance for request bodies.
// Initialized in init() with custom validators.
var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("kind", validateKind)
	_ = validate.RegisterValidation("handle", validateHandle)
}

// validateKind accepts the element type tags
func validateKind(fl validator.FieldLevel) bool {
	_, err := domain.ParseKind(fl.Field().String())
	return err == nil
}

// validateHandle accepts "<param>#<n>", e.g. `validate:"handle=source"`
func validateHandle(fl validator.FieldLevel) bool {
	_, err := domain.ParseHandle(fl.Field().String(), fl.Param())
	return err == nil
}

// validationDetails flattens validator errors into one line
func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// =============================================================================
// Request Types
// =============================================================================

// CreateNodeRequest places a new element
type CreateNodeRequest struct {
	Type     string          `json:"type" validate:"required,kind"`
	Position domain.Position `json:"position"`
}

// EdgeRequest identifies an edge by its four fields
type EdgeRequest struct {
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle" validate:"required,handle=source"`
	TargetHandle string `json:"targetHandle" validate:"required,handle=target"`
}

// SetValueRequest sets the output of an input element
type SetValueRequest struct {
	Value *bool `json:"value" validate:"required"`
}

// SetPositionRequest moves a node
type SetPositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}
