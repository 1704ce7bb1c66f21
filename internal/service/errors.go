package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error kinds. Every error returned by this package that is the caller's
// fault wraps exactly one of them.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a domain failure with a message safe to show to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func validation(msg string) error   { return newError(ErrValidation, msg) }
func forbidden(msg string) error    { return newError(ErrForbidden, msg) }
func notFound(msg string) error     { return newError(ErrNotFound, msg) }
func conflict(msg string) error     { return newError(ErrConflict, msg) }
func unauthorized(msg string) error { return newError(ErrUnauthorized, msg) }

// isDuplicateKey reports whether err is a unique constraint violation.
// TranslateError covers postgres and mysql; the string check catches drivers
// that do not translate.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
