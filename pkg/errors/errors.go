package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials      = errors.New("incorrect username or password")
	ErrUnauthorized            = errors.New("could not validate credentials")
	ErrInsufficientPermissions = errors.New("not authorized to perform this action")
	ErrControlUnitMismatch     = errors.New("token control unit does not match payload control unit")
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeEmptyUpdate       = "EMPTY_UPDATE"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeMalformedUnitID   = "MALFORMED_UNIT_ID"
)

type AppError struct {
	Code    string
	Message string
	Err     error
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

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation wraps a validator failure in a VALIDATION_ERROR.
func Validation(err error) *AppError {
	return NewAppError(CodeValidation, "Invalid input", err)
}

// IsCode reports whether err carries an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
