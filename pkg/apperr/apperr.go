package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Code string

const (
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodePrecondition Code = "PRECONDITION_FAILED"
	// CodeTransport means the backend could not be reached or answered garbage.
	CodeTransport Code = "TRANSPORT_ERROR"
	// CodeBackend means the backend answered and reported a failure.
	CodeBackend Code = "BACKEND_ERROR"
)

// ConnectionErrorMessage is shown to users whenever a transport failure occurs.
const ConnectionErrorMessage = "서버 연결 오류가 발생했습니다."

type AppError struct {
	Code       Code      `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode(code),
		Timestamp:  time.Now().UTC(),
	}
}

func Wrap(err error, code Code, message string) *AppError {
	e := New(code, message)
	e.Cause = err
	return e
}

func Internal(message string) *AppError { return New(CodeInternal, message) }
func Validation(message string) *AppError { return New(CodeValidation, message) }
func NotFound(message string) *AppError { return New(CodeNotFound, message) }
func Unauthorized(message string) *AppError { return New(CodeUnauthorized, message) }
func RateLimit(message string) *AppError { return New(CodeRateLimit, message) }
func Precondition(message string) *AppError { return New(CodePrecondition, message) }
func Backend(reason string) *AppError { return New(CodeBackend, reason) }
func Transport(cause error) *AppError { return Wrap(cause, CodeTransport, ConnectionErrorMessage) }

func statusCode(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodePrecondition:
		return http.StatusConflict
	case CodeTransport:
		return http.StatusBadGateway
	case CodeBackend:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// From converts any error into an AppError, treating unknown errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternal, "예기치 않은 오류가 발생했습니다.")
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// UserMessage is the text shown next to the failing category or action.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ConnectionErrorMessage
}

type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

type SuccessResponse struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}
