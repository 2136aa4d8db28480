package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of application error.
type ErrorCode int

const (
	ErrValidation ErrorCode = iota + 1000
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalidQuery
	ErrInvalidUpload
	ErrUploadTooLarge
	ErrConflict
	ErrInternal
)

// FieldError carries a per-field validation failure reason.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// AppError is the application error type. Every handler-level failure is
// wrapped in one of these before it reaches the error middleware.
type AppError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error class to its HTTP status. Oversize uploads keep
// 400 while disallowed content types get 415.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrValidation, ErrInvalidQuery, ErrUploadTooLarge:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidUpload:
		return http.StatusUnsupportedMediaType
	case ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, fields ...FieldError) *AppError {
	return &AppError{Code: ErrValidation, Message: message, Fields: fields}
}

func Unauthorized(message string, err error) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{Code: ErrUnauthorized, Message: message, Err: err}
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "insufficient role"
	}
	return &AppError{Code: ErrForbidden, Message: message}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: ErrNotFound, Message: fmt.Sprintf("no %s found with that ID", resource)}
}

func InvalidQuery(message string) *AppError {
	return &AppError{Code: ErrInvalidQuery, Message: message}
}

func InvalidUpload(message string) *AppError {
	return &AppError{Code: ErrInvalidUpload, Message: message}
}

func UploadTooLarge(message string) *AppError {
	return &AppError{Code: ErrUploadTooLarge, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Code: ErrInternal, Message: "internal server error", Err: err}
}

// As unwraps err into an *AppError if possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
