package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_CarryStableCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"unauthorized", NewUnauthorized("no token"), CodeAuthenticationRequired, http.StatusUnauthorized},
		{"not found", NewNotFound("ticket", nil), CodeNotFound, http.StatusNotFound},
		{"forbidden", NewForbidden("nope"), CodeForbidden, http.StatusForbidden},
		{"validation", NewValidationError("bad", nil), CodeValidationFailed, http.StatusBadRequest},
		{"conflict", NewConflict("resolved", nil), CodeConflict, http.StatusConflict},
		{"dependency", NewDependencyFailure("database", errors.New("down")), CodeDependencyFailure, http.StatusServiceUnavailable},
		{"internal", NewInternalError(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
			assert.True(t, HasCode(tt.err, tt.code))
		})
	}
}

func TestToDomainError_WrappedDomainErrorIsPreserved(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("service: %w", NewForbidden("not shared"))

	de := ToDomainError(wrapped)

	assert.Equal(t, CodeForbidden, de.Code)
	assert.Equal(t, "not shared", de.Message)
}

func TestToDomainError_PlainErrorBecomesInternal(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk on fire")

	de := ToDomainError(cause)

	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, cause)
}

func TestToDomainError_ContextErrorsAreDependencyFailures(t *testing.T) {
	t.Parallel()

	de := ToDomainError(fmt.Errorf("query: %w", context.DeadlineExceeded))

	assert.Equal(t, CodeDependencyFailure, de.Code)
	assert.Nil(t, ToDomainError(nil))
}

func TestNotFoundAndForbiddenAreDistinct(t *testing.T) {
	t.Parallel()

	nf := NewNotFound("ticket", nil)
	fb := NewForbidden("no access")

	assert.False(t, HasCode(nf, CodeForbidden))
	assert.False(t, HasCode(fb, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}
