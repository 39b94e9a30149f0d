package api

import (
	"errors"
	"fmt"
	"net/http"

	"gymdesk/internal/logger"

	"github.com/gin-gonic/gin"
)

// Kind classifies an error for the caller.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindInvalidRequest Kind = "invalid_request"
	KindPolicyDenied   Kind = "policy_denied"
	KindConflict       Kind = "conflict"
	KindStorage        Kind = "storage"
)

const internalErrorMessage = "internal server error"

// Error carries a caller-facing reason alongside the underlying cause.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

func InvalidRequest(reason string) *Error {
	return &Error{Kind: KindInvalidRequest, Reason: reason}
}

func PolicyDenied(reason string) *Error {
	return &Error{Kind: KindPolicyDenied, Reason: reason}
}

func Conflict(reason string, err error) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Err: err}
}

func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Reason: op, Err: err}
}

// KindOf returns the classification of err. Unclassified errors are storage
// failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindPolicyDenied:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as an ErrorResponse. Storage failures are logged and
// reported without detail.
func Respond(c *gin.Context, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"path", c.FullPath(),
			"method", c.Request.Method,
			"error", err,
		)
		c.JSON(status, ErrorResponse{Error: internalErrorMessage})
		return
	}

	var e *Error
	errors.As(err, &e)
	c.JSON(status, ErrorResponse{Error: e.Reason})
}
