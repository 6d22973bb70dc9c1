package domain

import (
	"errors"
	"net/http"
)

// Kind classifies an Error. The set is closed.
type Kind uint8

const (
	KindUnexpected Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindAuthorization
	KindNotFound
)

// Status is the canonical HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "unexpected"
	}
}

// Error is the single error type that crosses the service boundary. Status
// is fixed when the error is built; Fields carries per-field validation
// messages.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindUnexpected {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, status int, msg string) *Error {
	return &Error{Kind: kind, Status: status, Message: msg}
}

// Validation builds a 400 error. fields may be nil.
func Validation(msg string, fields map[string]string) *Error {
	e := newError(KindValidation, http.StatusBadRequest, msg)
	e.Fields = fields
	return e
}

// Unexpected wraps an infrastructure failure as a 500.
func Unexpected(msg string, err error) *Error {
	e := newError(KindUnexpected, http.StatusInternalServerError, msg)
	e.Err = err
	return e
}

// NotFound builds a 404 error.
func NotFound(msg string) *Error {
	return newError(KindNotFound, http.StatusNotFound, msg)
}

// AsError returns err as an *Error, treating anything unclassified as
// unexpected.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Unexpected("unexpected error", err)
}

var (
	// Duplicate email is reported as 400 so clients see the same status as
	// any other rejected registration field.
	ErrEmailInUse = newError(KindConflict, http.StatusBadRequest, "Email already in use")

	ErrInvalidCredentials       = newError(KindAuthentication, http.StatusUnauthorized, "Invalid credentials")
	ErrTokenMissing             = newError(KindAuthentication, http.StatusUnauthorized, "Authentication token missing")
	ErrInvalidToken             = newError(KindAuthentication, http.StatusUnauthorized, "Invalid token")
	ErrCurrentPasswordIncorrect = newError(KindAuthentication, http.StatusUnauthorized, "Current password is incorrect")
	ErrUnauthenticated          = newError(KindAuthentication, http.StatusUnauthorized, "Not authenticated")

	// ErrUserNotFound is a lookup miss during authentication so it carries 401.
	ErrUserNotFound = newError(KindNotFound, http.StatusUnauthorized, "User not found")

	ErrForbidden = newError(KindAuthorization, http.StatusForbidden, "Unauthorized access")

	ErrSamePassword = Validation("New password cannot be the same as current password", map[string]string{
		"newPassword": "New password cannot be the same as current password",
	})
)
