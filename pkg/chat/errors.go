package chat

import (
	"fmt"
	"net/http"
)

// Error is a typed domain error. Status is the HTTP code the transport
// layer should surface; Code is a stable machine-readable tag.
type Error struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func validationError(format string, args ...any) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: "validation", Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...any) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: fmt.Sprintf(format, args...)}
}

func authorizationError(format string, args ...any) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: fmt.Sprintf(format, args...)}
}

// inactiveSenderError covers writes by names not present in the registry.
// The transport maps it to 422 rather than 401: the claimed identity is not
// a verified principal, just a name that is not in the room.
func inactiveSenderError(name string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: "not_a_participant", Message: fmt.Sprintf("sender %q is not an active participant", name)}
}

func storageError(op string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "storage", Message: op + " failed", cause: err}
}
