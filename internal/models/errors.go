package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConfiguration ErrorKind = "configuration"
	KindUpstream      ErrorKind = "upstream"
)

// GradeError is the single error type returned by the grading pipeline.
// Message is what the client sees; Err keeps the underlying cause.
type GradeError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GradeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GradeError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to the HTTP status returned by /grade.
func (e *GradeError) StatusCode() int {
	if e.Kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func NewValidationError(msg string) *GradeError {
	return &GradeError{Kind: KindValidation, Message: msg}
}

func NewConfigurationError(msg string) *GradeError {
	return &GradeError{Kind: KindConfiguration, Message: msg}
}

func NewUpstreamError(msg string, err error) *GradeError {
	return &GradeError{Kind: KindUpstream, Message: msg, Err: err}
}

// AsGradeError unwraps err to a *GradeError. Anything else is treated as
// an upstream failure.
func AsGradeError(err error) *GradeError {
	var ge *GradeError
	if errors.As(err, &ge) {
		return ge
	}
	return NewUpstreamError("grading failed", err)
}
