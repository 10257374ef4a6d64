package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInternal, http.StatusInternalServerError},
		{CodeInvalidFormat, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeBadRequest, http.StatusBadRequest},
		{Code(99), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			var gerr *Error
			require.True(t, errors.As(NewBusiness("x", tt.code), &gerr))
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewBusinessCause(t *testing.T) {
	errDomain := errors.New("already enrolled")
	err := NewBusinessCause(errDomain, "2FA is already enabled", CodeConflict)

	assert.ErrorIs(t, err, errDomain)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), errDomain)

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "2FA is already enabled", gerr.Msg())
	assert.Equal(t, "already enrolled", gerr.Error())
	assert.Equal(t, TypeBusiness, gerr.Type())
	assert.Equal(t, CodeConflict, gerr.Code())
}

func TestNewServer_HidesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewServer(cause)

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "Internal server error", gerr.Msg())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, gerr.String(), "ERROR_TYPE_SERVER")
}

func TestNewInvalidInput(t *testing.T) {
	var gerr *Error

	require.True(t, errors.As(NewInvalidInput(nil, "code", "code is required"), &gerr))
	assert.Equal(t, map[string]string{"code": "code is required"}, gerr.Fields())
	assert.Equal(t, CodeInvalidInput, gerr.Code())

	require.True(t, errors.As(NewInvalidInput(nil, "dangling"), &gerr))
	assert.Equal(t, CodeInvalidFormat, gerr.Code())

	cause := errors.New("validator says no")
	require.True(t, errors.As(NewInvalidInput(cause), &gerr))
	assert.ErrorIs(t, gerr, cause)
}

func TestNewInvalidFormat(t *testing.T) {
	var gerr *Error

	require.True(t, errors.As(NewInvalidFormat(), &gerr))
	assert.Equal(t, "Invalid request body", gerr.Msg())

	require.True(t, errors.As(NewInvalidFormat("Body too large"), &gerr))
	assert.Equal(t, "Body too large", gerr.Msg())
	assert.Equal(t, http.StatusBadRequest, gerr.StatusCode())
}

func TestTypeOf(t *testing.T) {
	typ, ok := TypeOf(fmt.Errorf("ctx: %w", NewInvalidFormat()))
	assert.True(t, ok)
	assert.Equal(t, TypeValidation, typ)

	_, ok = TypeOf(errors.New("plain"))
	assert.False(t, ok)

	_, ok = TypeOf(nil)
	assert.False(t, ok)
}

func TestError_FallbackText(t *testing.T) {
	assert.Equal(t, "Validation violation", (&Error{errType: TypeValidation}).Error())
	assert.Equal(t, "Logical business not meet with requirement", (&Error{errType: TypeBusiness}).Error())
	assert.Equal(t, "Internal error", (&Error{}).Error())
}
