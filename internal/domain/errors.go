package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrWalletDisconnected is returned when an action needs a connected wallet
var ErrWalletDisconnected = errors.New("wallet not connected")

// FieldError describes a single invalid submission field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a listing submission is missing required fields
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}
