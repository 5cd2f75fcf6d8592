package goerror

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "unavailable", err: NewUnavailable(errors.New("dial"), "store down"), want: http.StatusServiceUnavailable},
		{name: "unauthorized", err: NewBusiness("nope", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "too many", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "fields", err: NewInvalidInput(nil, "code", "must be 6 digits"), want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ge *Error
			assert.True(t, errors.As(tt.err, &ge))
			assert.Equal(t, tt.want, ge.StatusCode())
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("issue: %w", NewUnavailable(nil, "store down"))

	assert.Equal(t, CodeUnavailable, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "code", "must be 6 digits")

	var ge *Error
	assert.True(t, errors.As(err, &ge))
	assert.Equal(t, map[string]string{"code": "must be 6 digits"}, ge.Fields())
	assert.Equal(t, TypeValidation, ge.Type())
}

func TestCode_StatusAndName(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, CodeInvalidInput.Status())
	assert.Equal(t, "too_many_requests", CodeTooManyRequest.String())
	assert.Equal(t, http.StatusInternalServerError, Code(99).Status())
	assert.Equal(t, "internal", Code(99).String())
}

func TestError_Message(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	assert.Equal(t, "dial tcp: refused", NewServer(cause).Error())
	assert.Equal(t, "nope", NewBusiness("nope", CodeForbidden).Error())
	assert.ErrorIs(t, NewUnavailable(cause, "store down"), cause)

	var ge *Error
	assert.True(t, errors.As(NewInvalidInput(nil, "odd"), &ge))
	assert.Equal(t, CodeInvalidFormat, ge.Code())
}

func TestError_LogValue(t *testing.T) {
	var ge *Error
	assert.True(t, errors.As(NewUnavailable(errors.New("dial"), "store down"), &ge))

	v := ge.LogValue()
	assert.Equal(t, slog.KindGroup, v.Kind())

	got := map[string]string{}
	for _, a := range v.Group() {
		got[a.Key] = a.Value.String()
	}
	assert.Equal(t, map[string]string{
		"type":    "server",
		"code":    "unavailable",
		"message": "store down",
		"cause":   "dial",
	}, got)
}
