package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anthonyhasrouny/portfolio/pkg/models"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeDispatchFailed = "DISPATCH_FAILED"
	ErrCodeNotConfigured  = "NOT_CONFIGURED"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// Error constructors

// NewBadRequestError creates a new bad request error
func NewBadRequestError(msg string) error {
	return &DomainError{
		Code:    ErrCodeBadRequest,
		Message: msg,
	}
}

// NewRateLimitedError creates a new rate limit error
func NewRateLimitedError() error {
	return &DomainError{
		Code:    ErrCodeRateLimited,
		Message: "Too many requests. Please try again later.",
	}
}

// NewDispatchError wraps a failure reported by the email provider
func NewDispatchError(provider string, err error) error {
	return &DomainError{
		Code:    ErrCodeDispatchFailed,
		Message: fmt.Sprintf("%s failed to accept the message", provider),
		Err:     err,
	}
}

// NewNotConfiguredError reports a missing credential or setting
func NewNotConfiguredError(what string) error {
	return &DomainError{
		Code:    ErrCodeNotConfigured,
		Message: fmt.Sprintf("%s is not configured", what),
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// Helper functions to check error types

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsDispatchFailed checks if the email provider rejected or never received the message
func IsDispatchFailed(err error) bool {
	return hasCode(err, ErrCodeDispatchFailed)
}

// IsNotConfigured checks if the error is a missing configuration error
func IsNotConfigured(err error) bool {
	return hasCode(err, ErrCodeNotConfigured)
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldErrors lists field-level validation failures in the order they were found.
type FieldErrors []models.FieldError

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, fe := range f {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// NewFieldValidationError creates a validation error carrying per-field details
func NewFieldValidationError(msg string, fields FieldErrors) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
		Err:     fields,
	}
}

// FieldsOf returns the per-field details attached to a validation error, if any
func FieldsOf(err error) FieldErrors {
	var fields FieldErrors
	if errors.As(err, &fields) {
		return fields
	}
	return nil
}

// MessageOf returns the human readable message of a domain error
func MessageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
