// Package apperror defines the error kinds shared by the services and the
// HTTP layer. Services return *AppError values wrapping one of the sentinel
// kinds below; handlers map the kind to a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("not authorized")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyLiked       = errors.New("already liked")
	ErrNotLiked           = errors.New("not liked")
	ErrUpstream           = errors.New("upstream failure")
	ErrStore              = errors.New("store failure")
)

// FieldError is one entry of a validation failure, shaped the way the
// client renders alerts.
type FieldError struct {
	Param string `json:"param,omitempty"`
	Msg   string `json:"msg"`
}

type AppError struct {
	Err     error        // kind, one of the sentinels above
	Message string       // safe to show to the client
	Fields  []FieldError // validation details, if any
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

func Validation(fields ...FieldError) *AppError {
	msg := "Validation failed"
	if len(fields) == 1 {
		msg = fields[0].Msg
	}
	return &AppError{Err: ErrValidation, Message: msg, Fields: fields}
}

func ValidationField(param, msg string) *AppError {
	return Validation(FieldError{Param: param, Msg: msg})
}

func DuplicateUser() *AppError {
	return &AppError{Err: ErrDuplicateUser, Message: "User already exists"}
}

func InvalidCredentials() *AppError {
	return &AppError{Err: ErrInvalidCredentials, Message: "Invalid Credentials"}
}

func MissingToken() *AppError {
	return &AppError{Err: ErrMissingToken, Message: "No token, authorization denied"}
}

func InvalidToken(cause error) *AppError {
	return &AppError{Err: ErrInvalidToken, Message: "Token is not valid", cause: cause}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

func AlreadyLiked() *AppError {
	return &AppError{Err: ErrAlreadyLiked, Message: "Post already liked"}
}

func NotLiked() *AppError {
	return &AppError{Err: ErrNotLiked, Message: "Post has not yet been liked"}
}

func Upstream(message string, cause error) *AppError {
	return &AppError{Err: ErrUpstream, Message: message, cause: cause}
}

// Store wraps an unexpected persistence failure. The message never reaches
// the client; handlers collapse it to a generic 500.
func Store(op string, cause error) *AppError {
	return &AppError{Err: ErrStore, Message: op, cause: cause}
}

// Fields returns the validation details of err, or a single entry carrying
// the error message when err has none.
func Fields(err error) []FieldError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if len(appErr.Fields) > 0 {
			return appErr.Fields
		}
		return []FieldError{{Msg: appErr.Message}}
	}
	return []FieldError{{Msg: err.Error()}}
}
