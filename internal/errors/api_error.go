package errors

import "net/http"

// APIError is the single error type the services return; the HTTP layer maps
// it 1:1 to a status code and JSON body.
type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, "internal_error", message)
}

// Upstream signals a dependency failure (queue, object storage). It maps to
// 500 and is never retried on the request path.
func Upstream(message string) *APIError {
	if message == "" {
		message = "upstream dependency failed"
	}
	return New(http.StatusInternalServerError, "upstream_error", message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

// InvalidState signals an operation that is not legal in the entity's current
// state machine state. The caller must re-fetch before retrying.
func InvalidState(message string) *APIError {
	return New(http.StatusBadRequest, "invalid_state", message)
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details interface{}) *APIError {
	err := New(http.StatusConflict, code, message)
	err.Details = details
	return err
}
