package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithMessage_KeepsIdentity(t *testing.T) {
	derived := ErrInsufficientStock.WithMessage("《Go语言实战》库存不足")

	assert.True(t, errors.Is(derived, ErrInsufficientStock))
	assert.Equal(t, ErrCodeInsufficientStock, derived.Code)
	assert.Equal(t, "《Go语言实战》库存不足", derived.Message)
	assert.False(t, errors.Is(derived, ErrEmailDuplicate))

	twice := derived.WithMessage("again")
	assert.True(t, errors.Is(twice, ErrInsufficientStock))
}

func TestGetAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrBookNotFound)
	assert.Same(t, ErrBookNotFound, GetAppError(wrapped))

	plain := errors.New("boom")
	appErr := GetAppError(plain)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, plain)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		ErrCodeInsufficientStock:  http.StatusBadRequest,
		ErrCodeEmailDuplicate:     http.StatusBadRequest,
		ErrCodeInvalidParams:      http.StatusBadRequest,
		ErrCodeInvalidCredentials: http.StatusUnauthorized,
		ErrCodeTokenExpired:       http.StatusUnauthorized,
		ErrCodeForbidden:          http.StatusForbidden,
		ErrCodeOrderNotFound:      http.StatusNotFound,
		ErrCodeTooManyRequests:    http.StatusTooManyRequests,
		ErrCodeDatabaseError:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %d", code)
	}
}
