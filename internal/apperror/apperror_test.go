package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:    http.StatusBadRequest,
		KindAuth:          http.StatusUnauthorized,
		KindAuthorization: http.StatusForbidden,
		KindNotFound:      http.StatusNotFound,
		KindConflict:      http.StatusConflict,
		KindPayload:       http.StatusRequestEntityTooLarge,
		KindRateLimit:     http.StatusTooManyRequests,
		KindDatabase:      http.StatusInternalServerError,
		KindStorage:       http.StatusInternalServerError,
		KindEmail:         http.StatusInternalServerError,
		KindInternal:      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		require.Equal(t, want, Status(New(kind, "boom")), string(kind))
	}
}

func TestStatusOfPlainError(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindNotFound, "photo missing")
	wrapped := fmt.Errorf("list photos: %w", inner)

	require.Equal(t, KindNotFound, KindOf(wrapped))
	require.Equal(t, http.StatusNotFound, Status(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindDatabase, "load user", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "load user")
	require.Contains(t, err.Error(), "connection refused")
}
