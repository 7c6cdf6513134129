package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorCode string

const (
	ErrorInvalid         ErrorCode = "invalid"
	ErrorUnauthorized    ErrorCode = "unauthorized"
	ErrorForbidden       ErrorCode = "forbidden"
	ErrorNotFound        ErrorCode = "not_found"
	ErrorConflict        ErrorCode = "conflict"
	ErrorTooManyRequests ErrorCode = "too_many_requests"
	ErrorBadGateway      ErrorCode = "bad_gateway"
	ErrorUnavailable     ErrorCode = "unavailable"
)

var (
	// ErrUnauthorized matches any *APIError carrying a 401.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// ErrInvalidArgument is returned for requests rejected before dispatch.
	ErrInvalidArgument = errors.New("invalid argument")
)

// APIError is a non-2xx answer from the backend, or a 2xx body that carried
// an "error" field instead of a result.
type APIError struct {
	Method string
	Path   string
	Status int
	Code   ErrorCode
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == ErrorUnauthorized
	case ErrForbidden:
		return e.Code == ErrorForbidden
	case ErrNotFound:
		return e.Code == ErrorNotFound
	}
	return false
}

func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func codeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorUnauthorized
	case status == http.StatusForbidden:
		return ErrorForbidden
	case status == http.StatusNotFound:
		return ErrorNotFound
	case status == http.StatusConflict:
		return ErrorConflict
	case status == http.StatusTooManyRequests:
		return ErrorTooManyRequests
	case status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		return ErrorBadGateway
	case status >= 500:
		return ErrorUnavailable
	default:
		return ErrorInvalid
	}
}

// parseDetail extracts a human message from a FastAPI-style error body.
// detail is either a string or a list of {loc, msg} validation entries.
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(env.Detail) > 0 {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(env.Detail, &list); err == nil {
			msgs := make([]string, 0, len(list))
			for _, it := range list {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return env.Error
}
