package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewBadRequestError("Invalid request body")
	assert.Equal(t, "BAD_REQUEST: Invalid request body", err.Error())

	cause := errors.New("connection reset")
	err = NewDispatchError("sendgrid", cause)
	assert.Equal(t, "DISPATCH_FAILED: sendgrid failed to accept the message: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestDomainError_Checks(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  string
	}{
		{"validation", NewFieldValidationError("x", FieldErrors{{Field: "name", Message: "x"}}), ErrCodeValidation},
		{"bad request", NewBadRequestError("x"), ErrCodeBadRequest},
		{"rate limited", NewRateLimitedError(), ErrCodeRateLimited},
		{"dispatch", NewDispatchError("ses", errors.New("boom")), ErrCodeDispatchFailed},
		{"not configured", NewNotConfiguredError("SENDGRID_API_KEY"), ErrCodeNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetErrorCode(tt.err))

			wrapped := fmt.Errorf("submit: %w", tt.err)
			assert.Equal(t, tt.code, GetErrorCode(wrapped), "codes must survive wrapping")
		})
	}

	assert.True(t, IsValidation(NewFieldValidationError("x", nil)))
	assert.True(t, IsDispatchFailed(fmt.Errorf("send: %w", NewDispatchError("ses", errors.New("boom")))))
	assert.True(t, IsNotConfigured(NewNotConfiguredError("SENDGRID_API_KEY")))
	assert.False(t, IsDispatchFailed(NewRateLimitedError()))
}

func TestGetErrorCode_PlainError(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, GetErrorCode(errors.New("plain")))
	assert.False(t, IsValidation(errors.New("plain")))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(NewInternalError(errors.New("x"))))
}

func TestFieldValidationError(t *testing.T) {
	fields := FieldErrors{
		{Field: "email", Message: "Invalid email format"},
		{Field: "timeline", Message: "Timeline is required"},
	}
	err := NewFieldValidationError("Invalid email format", fields)

	assert.True(t, IsValidation(err))
	assert.Equal(t, "Invalid email format", MessageOf(err))
	assert.Equal(t, fields, FieldsOf(err))
	assert.Contains(t, err.Error(), "email: Invalid email format; timeline: Timeline is required")

	assert.Nil(t, FieldsOf(NewBadRequestError("no fields")))
	assert.Empty(t, MessageOf(errors.New("plain")))
}
