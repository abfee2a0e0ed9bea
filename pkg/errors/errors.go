// Package errors provides custom error types for the equitysync system.
// These errors enable programmatic error checking across the fetch,
// reconciliation and destination phases of a run.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the equitysync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransient indicates a network or provider fault worth retrying
	ErrTransient = errors.New("transient provider error")

	// ErrEmptyResponse indicates the provider returned no usable payload
	ErrEmptyResponse = errors.New("empty response")

	// ErrValidationFailed indicates a payload parsed but failed a business rule
	ErrValidationFailed = errors.New("validation failed")

	// ErrSchemaMissing indicates a required input column is absent
	ErrSchemaMissing = errors.New("required column missing")

	// ErrDestinationRejected indicates a non-success response from the content API
	ErrDestinationRejected = errors.New("destination rejected")

	// ErrCredentialsRequired indicates destination credentials are required but not set
	ErrCredentialsRequired = errors.New("credentials required")

	// ErrRateLimited indicates the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderUnavailable indicates a provider is temporarily unavailable
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// FetchError represents a terminal failure fetching one identifier.
// Reason records which branch of the taxonomy the failure landed in.
type FetchError struct {
	Code    string
	Reason  FetchReason
	Attempt int
	Err     error
}

// FetchReason classifies a fetch failure.
type FetchReason string

// Fetch failure reasons.
const (
	ReasonTransient  FetchReason = "transient-error"
	ReasonEmpty      FetchReason = "empty-response"
	ReasonValidation FetchReason = "validation-failure"
)

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("fetch %s failed after %d attempts (%s): %v", e.Code, e.Attempt, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s failed (%s): %v", e.Code, e.Reason, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	switch e.Reason {
	case ReasonTransient:
		return target == ErrTransient
	case ReasonEmpty:
		return target == ErrEmptyResponse
	case ReasonValidation:
		return target == ErrValidationFailed
	}
	return false
}

// NewFetchError creates a new FetchError
func NewFetchError(code string, reason FetchReason, attempt int, err error) *FetchError {
	return &FetchError{Code: code, Reason: reason, Attempt: attempt, Err: err}
}

// ValidationError represents a business-rule rejection of a parsed payload
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed || target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error response from an external HTTP API
type APIError struct {
	Service    string // "provider" or "destination"
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 {
		return target == ErrProviderUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// SchemaError indicates a required column is missing from a tabular input.
// Schema errors are fatal and abort the run before any fetch work begins.
type SchemaError struct {
	File    string
	Columns []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("input %s is missing required columns: %v", e.File, e.Columns)
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMissing
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(file string, columns ...string) *SchemaError {
	return &SchemaError{File: file, Columns: columns}
}

// DestinationError represents a rejected action against the content API.
// Destination errors are recorded per action and never abort the run.
type DestinationError struct {
	Action string // "create", "update", "unpublish"
	Code   string // identifier the action targeted
	PostID int    // destination id, when known
	Err    error
}

// Error implements the error interface
func (e *DestinationError) Error() string {
	if e.PostID != 0 {
		return fmt.Sprintf("destination %s for %s (post %d) failed: %v", e.Action, e.Code, e.PostID, e.Err)
	}
	return fmt.Sprintf("destination %s for %s failed: %v", e.Action, e.Code, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DestinationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DestinationError) Is(target error) bool {
	return target == ErrDestinationRejected
}

// NewDestinationError creates a new DestinationError
func NewDestinationError(action, code string, postID int, err error) *DestinationError {
	return &DestinationError{Action: action, Code: code, PostID: postID, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Re-exports so callers don't need a second errors import

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient checks if an error is worth retrying
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable)
}

// IsValidationError checks if an error is a business-rule rejection
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsSchemaMissing checks if an error is a fatal schema error
func IsSchemaMissing(err error) bool {
	return errors.Is(err, ErrSchemaMissing)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
