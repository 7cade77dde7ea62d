// Package apperr defines the error taxonomy the API speaks: every failure a
// handler can return maps to exactly one kind, and every kind to one HTTP
// status. Callers can always tell "empty result" from "operation failed".
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Kind int

const (
	// Validation covers missing or malformed required fields.
	Validation Kind = iota + 1
	// Authentication covers missing, expired or invalid sessions.
	Authentication
	// Authorization covers authenticated callers with the wrong role or
	// no ownership of the resource.
	Authorization
	// NotFound covers references to rows that do not exist.
	NotFound
	// Conflict covers duplicate rows and re-transitions of terminal states.
	Conflict
	// Infrastructure covers store unavailability and driver failures.
	Infrastructure
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind carried by err, or Infrastructure for anything
// outside the taxonomy. Unknown failures are store/driver failures by policy.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Infrastructure
}

// HTTPStatus maps an error to the status code of its kind.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return 400
	case Authentication:
		return 401
	case Authorization:
		return 403
	case NotFound:
		return 404
	case Conflict:
		return 409
	default:
		return 500
	}
}

// FromDB classifies a gorm error. Record-not-found becomes NotFound with the
// given message, a duplicate key becomes Conflict, everything else is an
// Infrastructure failure. Requires the postgres driver's error translation.
func FromDB(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(NotFound, notFoundMsg, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(Conflict, "record already exists", err)
	default:
		return Wrap(Infrastructure, "database error", err)
	}
}
