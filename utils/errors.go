package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeValidation        ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeMergeConflict     ErrorCode = "MERGE_CONFLICT"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type ErrorMetadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[ErrorCode]ErrorMetadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "dados inválidos",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "autenticação necessária",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "recurso não encontrado",
	},
	CodeInvalidTransition: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "transição de status não permitida",
		DetailsAllowed: true,
	},
	CodeConflict: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "conflito",
		DetailsAllowed: true,
	},
	CodeMergeConflict: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Retryable:     true,
		PublicMessage: "conflito concorrente, tente novamente",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "erro interno",
	},
}

func MetadataFor(code ErrorCode) ErrorMetadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// AppError is the error value every service returns to the transport layer.
type AppError struct {
	Code    ErrorCode
	Message string
	Details any
	cause   error
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func WrapAppError(code ErrorCode, err error, message string) *AppError {
	return &AppError{Code: code, Message: message, cause: err}
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any AppError carrying the same code, so callers can write
// errors.Is(err, utils.ErrNotFound).
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation        = NewAppError(CodeValidation, "validation")
	ErrNotFound          = NewAppError(CodeNotFound, "not found")
	ErrInvalidTransition = NewAppError(CodeInvalidTransition, "invalid transition")
	ErrConflict          = NewAppError(CodeConflict, "conflict")
	ErrMergeConflict     = NewAppError(CodeMergeConflict, "merge conflict")
	ErrInternal          = NewAppError(CodeInternal, "internal")
)

// AsAppError unwraps err into an AppError, classifying anything else as internal.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return WrapAppError(CodeInternal, err, "erro interno")
}
