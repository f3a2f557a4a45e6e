package dErrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode_WalksWrappedChain(t *testing.T) {
	base := New(CodeNotFound, "record not found")
	wrapped := Wrap(base, CodeInternal, "load monitored user")

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeConflict))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestWrap_PreservesCauseForErrorsIs(t *testing.T) {
	sentinel := errors.New("driver: bad connection")
	wrapped := Wrap(fmt.Errorf("query: %w", sentinel), CodeInternal, "query audit events")

	assert.ErrorIs(t, wrapped, sentinel)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "already resolved")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.code), string(tt.code))
	}
}
