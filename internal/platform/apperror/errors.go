// Package apperror defines the typed errors shared by the storefront's
// domain, application and transport layers.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// GenericRetryMessage is shown whenever the upstream gave no usable reason.
const GenericRetryMessage = "Please try again later"

// ValidationError reports input that was rejected before any side effect.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NewFieldValidationError creates a ValidationError carrying per-field messages.
func NewFieldValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "Please fill in all required fields", Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// NotFoundError is a navigational outcome: the caller should leave the detail view.
type NotFoundError struct {
	Entity   string
	ID       string
	Redirect string
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// WithRedirect sets the listing page the caller should be routed to.
func (e *NotFoundError) WithRedirect(path string) *NotFoundError {
	e.Redirect = path
	return e
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ConflictError reports that the backend refused a write because of a competing one.
type ConflictError struct {
	Message string
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidStateError reports a state transition the client is not allowed to request.
type InvalidStateError struct {
	From string
	To   string
}

// NewInvalidStateError creates an InvalidStateError.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// RejectedError carries a reason string the backend gave for refusing a request.
type RejectedError struct {
	StatusCode int
	Reason     string
}

// NewRejectedError creates a RejectedError.
func NewRejectedError(statusCode int, reason string) *RejectedError {
	return &RejectedError{StatusCode: statusCode, Reason: reason}
}

func (e *RejectedError) Error() string { return e.Reason }

// UnauthorizedError reports a missing, expired or invalid credential.
type UnauthorizedError struct {
	Message string
}

// NewUnauthorizedError creates an UnauthorizedError.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func (e *UnauthorizedError) Error() string { return e.Message }

// ForbiddenError reports an authenticated caller acting outside its role.
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func (e *ForbiddenError) Error() string { return e.Message }

// TokenError reports that a bearer token could not be acquired.
type TokenError struct {
	Err error
}

// NewTokenError wraps a token acquisition failure.
func NewTokenError(err error) *TokenError {
	return &TokenError{Err: err}
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token acquisition failed: %v", e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// UpstreamError is a generic network or server failure of a collaborator.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

// NewUpstreamError creates an UpstreamError for the named operation.
func NewUpstreamError(op string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{Op: op, StatusCode: statusCode, Err: err}
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: upstream status %d", e.Op, e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
