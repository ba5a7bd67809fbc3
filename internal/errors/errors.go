package errors

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigInvalid = &AppError{Code: "CONFIG_001", Message: "invalid configuration"}
	ErrKeyMissing    = &AppError{Code: "CONFIG_002", Message: "API key not configured"}

	ErrUpstream        = &AppError{Code: "LLM_001", Message: "upstream model call failed"}
	ErrEmptyCompletion = &AppError{Code: "LLM_002", Message: "upstream returned no candidates"}
	ErrRateLimited     = &AppError{Code: "LLM_003", Message: "rate limit exceeded"}

	ErrInvalidSchedule = &AppError{Code: "MED_001", Message: "invalid medication schedule"}
	ErrTaskNotFound    = &AppError{Code: "MED_002", Message: "medication task not found"}

	ErrMailNotConfigured = &AppError{Code: "MAIL_001", Message: "SMTP not configured"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

// IsAppError reports whether err or anything it wraps is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the code of the first AppError in err's chain
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
