package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "boom", AuthExchange("boom").Error())

	wrapped := Wrap(errors.New("tcp refused"), ErrCodeConnectivity, "network error")
	assert.Equal(t, "network error: tcp refused", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, ErrCodeInternal, "wrapper")

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		err       error
		predicate func(error) bool
		name      string
	}{
		{AuthExchange("x"), IsAuthExchange, "auth exchange"},
		{AuthExchangef("x %d", 1), IsAuthExchange, "auth exchange formatted"},
		{SessionExpired("x"), IsSessionExpired, "session expired"},
		{AuthRequired("x"), IsAuthRequired, "auth required"},
		{AuthRequiredf("x %s", "y"), IsAuthRequired, "auth required formatted"},
		{Connectivity("x"), IsConnectivity, "connectivity"},
		{DomainFetch("x"), IsDomainFetch, "domain fetch"},
		{DomainFetchf("x %s", "y"), IsDomainFetch, "domain fetch formatted"},
		{Validation("x"), IsValidation, "validation"},
		{Validationf("x %s", "y"), IsValidation, "validation formatted"},
		{Internal("x"), IsInternal, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.predicate(tt.err))
			assert.False(t, tt.predicate(errors.New("plain")))
			assert.False(t, tt.predicate(nil))
		})
	}
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	inner := AuthRequired("session lost")
	outer := fmt.Errorf("fetch projects: %w", inner)

	assert.True(t, IsAuthRequired(outer))
	assert.False(t, IsConnectivity(outer))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeValidation, GetCode(Validation("x")))
	assert.Equal(t, ErrCodeConnectivity, GetCode(fmt.Errorf("outer: %w", Connectivity("x"))))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetCode(nil))
}
