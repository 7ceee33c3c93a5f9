package common

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Kind classifies an error so callers and the HTTP layer can react without
// string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthentication
	KindAuthorization
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindAuthentication:
		return "UNAUTHENTICATED"
	case KindAuthorization:
		return "FORBIDDEN"
	case KindStorage:
		return "STORAGE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error is the single error type every service returns.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundError(resource string) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s not found", resource)}
}

func ConflictError(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func AuthenticationError(msg string) error {
	return &Error{Kind: KindAuthentication, Msg: msg}
}

func AuthorizationError(msg string) error {
	return &Error{Kind: KindAuthorization, Msg: msg}
}

func StorageError(op string, err error) error {
	return &Error{Kind: KindStorage, Msg: fmt.Sprintf("storage failure during %s", op), Err: err}
}

// KindOf extracts the Kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromDB translates a repository error: pgx.ErrNoRows becomes NotFound for the
// named resource, anything else is a transient storage failure.
func FromDB(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFoundError(resource)
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return StorageError(resource, err)
}
