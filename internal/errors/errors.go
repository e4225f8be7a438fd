package errors

import (
	"errors"
	"net/http"
)

// Error kinds. Match with errors.Is.
var (
	// ErrValidation is returned for missing or malformed input.
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned when a user with the same email exists.
	ErrConflict = errors.New("conflict")
	// ErrAuth is returned for invalid credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrUnavailable is returned when the user store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
	// ErrGateway is returned when the payment provider fails.
	ErrGateway = errors.New("payment gateway error")
	// ErrVerification is returned when a payment signature does not match.
	ErrVerification = errors.New("payment verification failed")
)

// Error is a domain error with a client-safe message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds an ErrValidation error.
func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Conflict builds an ErrConflict error.
func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Auth builds an ErrAuth error.
func Auth(message string) error {
	return &Error{Kind: ErrAuth, Message: message}
}

// Unavailable wraps a store connectivity failure.
func Unavailable(cause error) error {
	return &Error{Kind: ErrUnavailable, Message: "Database not connected", Err: cause}
}

// Gateway wraps a provider failure; the provider message is surfaced to clients.
func Gateway(cause error) error {
	msg := "payment gateway error"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: ErrGateway, Message: msg, Err: cause}
}

// Verification builds an ErrVerification error.
func Verification(message string) error {
	return &Error{Kind: ErrVerification, Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	msg := "internal server error"
	var de *Error
	if errors.As(err, &de) {
		msg = de.Message
	}

	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, msg, "VALIDATION_ERROR")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusBadRequest, msg, "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrAuth):
		return NewHTTPError(http.StatusUnauthorized, msg, "INVALID_CREDENTIALS")
	case errors.Is(err, ErrVerification):
		return NewHTTPError(http.StatusBadRequest, msg, "VERIFICATION_FAILED")
	case errors.Is(err, ErrUnavailable):
		return NewHTTPError(http.StatusInternalServerError, msg, "DATABASE_UNAVAILABLE")
	case errors.Is(err, ErrGateway):
		return NewHTTPError(http.StatusInternalServerError, msg, "GATEWAY_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
