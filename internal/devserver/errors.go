package devserver

import (
	"errors"
	"net/http"

	"github.com/wikismart/wikismart/internal/middleware"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var statusByCode = map[ErrorCode]int{
	ErrorInvalid:      http.StatusBadRequest,
	ErrorUnauthorized: http.StatusUnauthorized,
	ErrorForbidden:    http.StatusForbidden,
	ErrorNotFound:     http.StatusNotFound,
	ErrorConflict:     http.StatusBadRequest,
}

// writeError maps service errors onto FastAPI-style {"detail": ...} bodies.
func writeError(w http.ResponseWriter, err error) {
	if se, ok := AsServiceError(err); ok {
		middleware.WriteDetail(w, statusByCode[se.Code], se.Message)
		return
	}
	middleware.WriteDetail(w, http.StatusInternalServerError, err.Error())
}
