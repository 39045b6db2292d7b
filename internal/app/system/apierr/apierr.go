// internal/app/system/apierr/apierr.go

// Package apierr defines the stable error kinds the API surfaces to callers
// and maps them onto the JSON error envelope.
//
// Error kinds:
//   - NotFound: an entity id does not resolve
//   - PermissionDenied: the caller lacks the required relationship
//   - Unauthorized: no (or invalid) credential
//   - Conflict: a domain invariant is already satisfied, e.g. a suggestion
//     that has already been materialized; a no-op conflict, not a crash
//   - Validation: malformed input such as an unparsable date
//   - Upstream: an external dependency failed
//
// Access and existence checks fail fast before any mutation begins, so these
// kinds are safe to surface without partial-write caveats.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Error code strings in the wire envelope.
const (
	CodeNotFound            = "not_found"
	CodePermissionDenied    = "permission_denied"
	CodeUnauthorized        = "unauthorized"
	CodeAlreadyMaterialized = "already_materialized"
	CodeConflict            = "conflict"
	CodeValidation          = "validation_error"
	CodeUpstream            = "upstream_failure"
	CodeRateLimited         = "rate_limited"
	CodeInternal            = "internal"
)

// Error is a caller-visible API failure with a stable code.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// NotFound reports that an entity id does not resolve.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

// PermissionDenied reports that the caller lacks the required relationship
// to the entity.
func PermissionDenied(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodePermissionDenied, Message: msg}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg}
}

// Conflict reports a domain invariant that is already satisfied.
func Conflict(code, msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: code, Message: msg}
}

// AlreadyMaterialized is the exactly-once conflict for suggestion conversion.
func AlreadyMaterialized() *Error {
	return Conflict(CodeAlreadyMaterialized, "a task has already been created from this suggestion")
}

// Validation reports malformed input.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

// RateLimited reports too many attempts from one client.
func RateLimited(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: msg}
}

// Upstream reports an external dependency failure.
func Upstream(msg string) *Error {
	return &Error{Status: http.StatusBadGateway, Code: CodeUpstream, Message: msg}
}

// envelope wraps an Error for JSON serialization.
type envelope struct {
	Error *Error `json:"error"`
}

// Write renders err as the JSON error envelope. Unknown error values become
// an opaque 500; the original error is logged, never leaked to the caller.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		apiErr = &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal error"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	if encErr := json.NewEncoder(w).Encode(envelope{Error: apiErr}); encErr != nil && log != nil {
		log.Error("write error response", zap.Error(encErr))
	}
}

// IsKind reports whether err is an API error with the given code.
func IsKind(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
