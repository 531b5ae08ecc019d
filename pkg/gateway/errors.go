package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies a gateway-level failure.
type FailureKind string

const (
	// FailureUnauthenticated means no credential was presented, or the first
	// credential presented did not verify.
	FailureUnauthenticated FailureKind = "unauthenticated"

	// FailureToolNotFound means the requested tool name is not registered.
	FailureToolNotFound FailureKind = "tool_not_found"

	// FailureValidation means the arguments violated the tool's input schema.
	FailureValidation FailureKind = "validation_error"

	// FailureDuplicateTool means a descriptor was registered under a name
	// that is already taken.
	FailureDuplicateTool FailureKind = "duplicate_tool"

	// FailureInternal is an unexpected gateway fault.
	FailureInternal FailureKind = "internal_error"
)

// Error is a classified gateway failure. Boundary failures (auth, lookup,
// validation) are returned as *Error so the transport layer can map them to
// a status code; handler failures never take this form, they are folded into
// the in-band ToolCallResult.
type Error struct {
	Kind   FailureKind
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Detail
}

// NewError creates a classified gateway error.
func NewError(kind FailureKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

// KindOf extracts the failure kind from an error. Errors that did not
// originate in the gateway are classified as internal.
func KindOf(err error) FailureKind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return FailureInternal
}

// HTTPStatus maps a failure kind to its transport status code.
func (k FailureKind) HTTPStatus() int {
	switch k {
	case FailureUnauthenticated:
		return http.StatusUnauthorized
	case FailureToolNotFound:
		return http.StatusNotFound
	case FailureValidation, FailureDuplicateTool:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
