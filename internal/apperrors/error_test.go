package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := ErrNotFound.Msg("part not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "part not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode())

	deeper := err.Msg("while loading revisions")
	assert.ErrorIs(t, deeper, ErrNotFound)

	wrapped := fmt.Errorf("handler: %w", deeper)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, http.StatusNotFound, StatusCode(wrapped))
}

func TestCausesAreMatched(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrStorageUnavailable.MsgErr("failed to store revision file", cause, nil)

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to store revision file; connection refused", err.ErrorAll())
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrStorageUnavailable, http.StatusServiceUnavailable},
		{ErrNoWorkspaceAvailable, http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), tc.err.Error())
	}
}

func TestSetStatusCodeDoesNotMutate(t *testing.T) {
	base := New("teapot")
	changed := base.SetStatusCode(http.StatusTeapot)
	assert.Equal(t, http.StatusInternalServerError, base.StatusCode())
	assert.Equal(t, http.StatusTeapot, changed.StatusCode())
}
