package guildservice

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error class carried across the API boundary.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindStorage       Kind = "storage"
	KindNotAuthorized Kind = "not_authorized"
	KindNotFound      Kind = "not_found"
)

// ValidationError reports user-correctable bad input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a backend write failure. Configuration changes are never
// dropped silently; callers always see this.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NotAuthorizedError reports a failed permission or administrator check. It is
// distinct from an authentication failure: the caller is known, just not
// allowed.
type NotAuthorizedError struct {
	UserID string
	Reason string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("user %s not authorized: %s", e.UserID, e.Reason)
}

// ErrNotFound surfaces for lookups that have a real absence semantic
// (administrators, permissions). Guild config reads never return it.
var ErrNotFound = errors.New("not found")

// KindOf classifies err for the API boundary. Unclassified errors count as
// storage failures; their text never crosses the boundary unfiltered.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var ae *NotAuthorizedError
	if errors.As(err, &ae) {
		return KindNotAuthorized
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindStorage
}
