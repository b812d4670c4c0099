// Package apperr defines the error taxonomy shared by the planner, stores
// and HTTP handlers. Handlers map a Kind to a status code exactly once, in
// httpx.WriteError.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the client.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindStorage
	KindFile
	KindFileMissing
	KindRateLimited
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuth:
		return "AuthError"
	case KindForbidden:
		return "ForbiddenError"
	case KindNotFound:
		return "NotFoundError"
	case KindStorage:
		return "StorageError"
	case KindFile, KindFileMissing:
		return "FileError"
	case KindRateLimited:
		return "RateLimited"
	}
	return "InternalError"
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindFile:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound, KindFileMissing:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Error is a classified error. Message is safe to show to clients; Err is
// the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a ValidationError.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// ValidationFields builds a ValidationError carrying per-field messages.
func ValidationFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Auth builds an AuthError.
func Auth(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }

// Forbidden builds a ForbiddenError.
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// NotFound builds a NotFoundError.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Storage wraps a document-store failure.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// File builds a FileError for bad input (invalid name, disallowed type).
func File(msg string) *Error { return &Error{Kind: KindFile, Message: msg} }

// FileMissing builds a FileError for a file that does not exist.
func FileMissing(msg string) *Error { return &Error{Kind: KindFileMissing, Message: msg} }

// RateLimited builds a too-many-requests error.
func RateLimited(msg string) *Error { return &Error{Kind: KindRateLimited, Message: msg} }

// KindOf returns the kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
