// Package apperr defines the error kinds shared by the domain packages and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds. Match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrPersistence       = errors.New("persistence failure")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Error carries a kind plus the details the HTTP layer reports.
type Error struct {
	Kind    error
	Message string

	// Entity and ID identify the missing or conflicting record
	Entity string
	ID     string

	// Stock details
	ProductID string
	Requested int
	Available int

	// Transient marks serialization and deadlock failures
	Transient bool

	cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

// Is matches the error's kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotFound reports a missing entity
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
		Entity:  entity,
		ID:      id,
	}
}

// OutOfStock reports a product with no inventory record
func OutOfStock(productID string) *Error {
	return &Error{
		Kind:      ErrOutOfStock,
		Message:   fmt.Sprintf("product %s is out of stock", productID),
		ProductID: productID,
	}
}

// InsufficientStock reports a product whose rest count cannot cover the request
func InsufficientStock(productID string, requested, available int) *Error {
	return &Error{
		Kind:      ErrInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", productID, requested, available),
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

// Validation reports malformed input
func Validation(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation
func Conflict(entity, format string, args ...any) *Error {
	return &Error{Kind: ErrConflict, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports rejected credentials
func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

// Persistence wraps a storage failure
func Persistence(op string, cause error, transient bool) *Error {
	return &Error{
		Kind:      ErrPersistence,
		Message:   op,
		Transient: transient,
		cause:     cause,
	}
}

// As extracts the *Error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsTransient reports whether err is a persistence failure worth retrying by the caller
func IsTransient(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Transient
}
