// Package core provides the wire types and error taxonomy shared by the contract checker.
package core

import (
	"errors"
	"fmt"
)

// ErrorType represents the class of a scenario failure
type ErrorType string

const (
	// ErrorTypeAssertion indicates an expectation did not hold against a successful response
	ErrorTypeAssertion ErrorType = "assertion_error"
	// ErrorTypeTransport indicates the request could not be completed (network, DNS, timeout)
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeShape indicates a JSON field was missing or of the wrong type
	ErrorTypeShape ErrorType = "shape_error"
	// ErrorTypeConfig indicates an invalid scenario, catalog or client configuration
	ErrorTypeConfig ErrorType = "config_error"
)

// CheckError is the error type for every failure the checker reports
type CheckError struct {
	Type      ErrorType `json:"type"`
	Scenario  string    `json:"scenario,omitempty"`
	Condition string    `json:"condition,omitempty"`
	Message   string    `json:"message"`
	// Original error for debugging
	Err error `json:"-"`
}

// Error implements the error interface
func (e *CheckError) Error() string {
	msg := e.Message
	if e.Condition != "" {
		msg = fmt.Sprintf("%s: %s", e.Condition, e.Message)
	}
	if e.Scenario != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Scenario, e.Type, msg)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap implements the error unwrapping interface
func (e *CheckError) Unwrap() error {
	return e.Err
}

// WithScenario returns a copy of the error attributed to the named scenario.
func (e *CheckError) WithScenario(name string) *CheckError {
	cp := *e
	cp.Scenario = name
	return &cp
}

// NewAssertionError creates an error for an expectation that did not hold
func NewAssertionError(condition, message string) *CheckError {
	return &CheckError{
		Type:      ErrorTypeAssertion,
		Condition: condition,
		Message:   message,
	}
}

// NewTransportError creates an error for a request that could not complete
func NewTransportError(message string, err error) *CheckError {
	return &CheckError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewShapeError creates an error for a JSON field that is missing or mistyped
func NewShapeError(condition, message string, err error) *CheckError {
	return &CheckError{
		Type:      ErrorTypeShape,
		Condition: condition,
		Message:   message,
		Err:       err,
	}
}

// NewConfigError creates an error for invalid configuration
func NewConfigError(message string, err error) *CheckError {
	return &CheckError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err is a CheckError of the given type.
func IsType(err error, t ErrorType) bool {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Type == t
	}
	return false
}

// AttributeTo attaches a scenario name to err when it is a CheckError.
// Other errors are wrapped as transport errors for that scenario.
func AttributeTo(scenario string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.WithScenario(scenario)
	}
	return NewTransportError(err.Error(), err).WithScenario(scenario)
}
