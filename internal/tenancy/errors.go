package tenancy

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable classification of a callable failure.
type ErrorCode string

const (
	CodeUnauthenticated    ErrorCode = "unauthenticated"
	CodePermissionDenied   ErrorCode = "permission-denied"
	CodeInvalidArgument    ErrorCode = "invalid-argument"
	CodeFailedPrecondition ErrorCode = "failed-precondition"
	CodeInternal           ErrorCode = "internal"
)

// Error is the typed error every callable operation raises. The message is
// safe to surface to callers; Details carries optional structured context.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// NewError builds a callable error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Details == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (details=%v)", e.Code, e.Message, e.Details)
}

// HTTPStatus maps the error code to its wire status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeFailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// AsError extracts a callable *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var callableErr *Error
	if errors.As(err, &callableErr) {
		return callableErr, true
	}
	return nil, false
}

// User-facing messages shared across operations.
const (
	inactiveWorkspaceMessage = "Your Sedifex workspace is currently inactive. Reach out to your Sedifex administrator to restore access."
	noAssignmentMessage      = "We could not find a workspace assignment for this account. Reach out to your Sedifex administrator."
	noWorkspaceConfigMessage = "We could not locate the Sedifex workspace configuration for this store. Reach out to your Sedifex administrator."
)
