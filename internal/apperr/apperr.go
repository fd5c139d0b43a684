// Package apperr defines the errors surfaced to front ends.
//
// Store and provider failures are translated into an [*Error] at the service
// boundary. The Message is short and safe to show to a user; the Cause is kept
// for logging only.
package apperr

import (
	"errors"

	"amsvault/internal/store"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindDuplicateEmail      Kind = "DUPLICATE_EMAIL"
	KindInvalidCredentials  Kind = "INVALID_CREDENTIALS"
	KindBookmarkExists      Kind = "BOOKMARK_EXISTS"
	KindNotFound            Kind = "NOT_FOUND"
	KindProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	KindStorageUnavailable  Kind = "STORAGE_UNAVAILABLE"
	KindUnauthenticated     Kind = "UNAUTHENTICATED"
	KindValidation          Kind = "VALIDATION_ERROR"
)

// Error is the error type returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	// Cause is the underlying error, for logging.
	Cause error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

func DuplicateEmail() *Error {
	return &Error{Kind: KindDuplicateEmail, Message: "This email is already registered"}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid email or password"}
}

func BookmarkExists() *Error {
	return &Error{Kind: KindBookmarkExists, Message: "Already in favorites"}
}

// NotFound creates a NOT_FOUND error for a named resource, e.g. NotFound("Bookmark").
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// ProviderUnavailable wraps a catalog provider failure.
func ProviderUnavailable(provider string, cause error) *Error {
	return &Error{
		Kind:    KindProviderUnavailable,
		Message: provider + " is unavailable right now",
		Cause:   cause,
	}
}

// StorageUnavailable wraps a failure of the local store.
func StorageUnavailable(cause error) *Error {
	return &Error{
		Kind:    KindStorageUnavailable,
		Message: "Local storage is unavailable, try again",
		Cause:   cause,
	}
}

func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "Please sign in first"}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// FromStore translates a store error. resource names the entity for NOT_FOUND.
// Returns nil for a nil err.
func FromStore(err error, resource string) error {
	if err == nil {
		return nil
	}
	if As(err) != nil {
		return err
	}
	var e *Error
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		e = DuplicateEmail()
	case errors.Is(err, store.ErrBookmarkExists):
		e = BookmarkExists()
	case errors.Is(err, store.ErrNotFound):
		e = NotFound(resource)
	case errors.Is(err, store.ErrInvalid):
		e = Validation("Invalid " + resource)
	default:
		e = StorageUnavailable(nil)
	}
	e.Cause = err
	return e
}

// Is reports whether err carries an [*Error] of the given kind.
func Is(err error, kind Kind) bool {
	e := As(err)
	return e != nil && e.Kind == kind
}

// As extracts the [*Error] from err's chain. It returns nil if not found.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
