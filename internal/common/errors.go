package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., email already exists
)

// ErrorKind classifies auth flow failures independently of any transport.
type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota + 1
	KindDuplicateEmail
	KindNotFound
	KindMismatch
	KindForbiddenRole
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindDuplicateEmail:
		return "DuplicateEmail"
	case KindNotFound:
		return "NotFound"
	case KindMismatch:
		return "Mismatch"
	case KindForbiddenRole:
		return "ForbiddenRole"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// AuthError is the single classified error returned by the auth flow.
type AuthError struct {
	Kind    ErrorKind
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is matches any *AuthError of the same kind, so callers can write
// errors.Is(err, common.ErrMismatch).
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidInput   = &AuthError{Kind: KindInvalidInput}
	ErrDuplicateEmail = &AuthError{Kind: KindDuplicateEmail}
	ErrUserNotFound   = &AuthError{Kind: KindNotFound}
	ErrMismatch       = &AuthError{Kind: KindMismatch}
	ErrForbiddenRole  = &AuthError{Kind: KindForbiddenRole}
)

func NewAuthError(kind ErrorKind, format string, args ...interface{}) *AuthError {
	return &AuthError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a classified error, or 0 if err is not one.
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindDuplicateEmail, KindNotFound, KindMismatch:
		return http.StatusConflict
	case KindForbiddenRole:
		return http.StatusMethodNotAllowed
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}
