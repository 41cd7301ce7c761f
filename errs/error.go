package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Application error codes. They map the domain failure taxonomy onto
// machine-readable strings, so that callers (mostly the http layer)
// can react to the kind of failure without parsing messages.
const (
	ECONFLICT     = "conflict"     // duplicate action or duplicate unique field
	EINVALID      = "invalid"      // malformed or rejected input
	EINTERNAL     = "internal"     // storage or infrastructure failure
	ENOTFOUND     = "not_found"    // referenced user / post does not resolve
	EUNAUTHORIZED = "unauthorized" // missing or failed authentication
)

// Error is an application error. Code classifies the failure, Message
// carries a human-readable description safe to show to the end user.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf constructs an *Error with the given code and a formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps the application error code of any error.
// Non-application errors count as EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps the message of any error. Non-application errors
// yield a generic message, so that internals never leak to the client.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// statusCodes maps application error codes to HTTP status codes.
var statusCodes = map[string]int{
	ECONFLICT:     http.StatusConflict,
	EINVALID:      http.StatusBadRequest,
	EINTERNAL:     http.StatusInternalServerError,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusUnauthorized,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if status, ok := statusCodes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the uniform error body returned to clients.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReturnError writes an error to the response, translating the application
// error code to an HTTP status. Internal errors are logged and masked.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(&ErrorResponse{Error: message})
}

// LogError logs an error together with the request method and path.
func LogError(r *http.Request, err error) {
	zap.L().Error("http error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}
