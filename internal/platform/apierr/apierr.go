package apierr

import (
	"fmt"
	"net/http"
)

// Error codes surfaced in the HTTP error envelope.
const (
	CodeInvalidInput       = "invalid_input"
	CodeUnauthorized       = "unauthorized"
	CodeOwnershipMismatch  = "ownership_mismatch"
	CodeNotFound           = "not_found"
	CodeConfigurationError = "configuration_error"
	CodePersistenceError   = "persistence_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func InvalidInput(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, err)
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, err)
}

func OwnershipMismatch(err error) *Error {
	return New(http.StatusForbidden, CodeOwnershipMismatch, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Configuration(err error) *Error {
	return New(http.StatusInternalServerError, CodeConfigurationError, err)
}

func Persistence(err error) *Error {
	return New(http.StatusInternalServerError, CodePersistenceError, err)
}
