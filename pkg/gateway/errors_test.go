package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		kind FailureKind
		want int
	}{
		{FailureUnauthenticated, http.StatusUnauthorized},
		{FailureToolNotFound, http.StatusNotFound},
		{FailureValidation, http.StatusBadRequest},
		{FailureDuplicateTool, http.StatusBadRequest},
		{FailureInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.HTTPStatus(), string(tt.kind))
	}
}

func TestKindOf(t *testing.T) {
	err := NewError(FailureToolNotFound, "tool %q not found", "x")
	assert.Equal(t, FailureToolNotFound, KindOf(err))

	wrapped := fmt.Errorf("dispatch: %w", err)
	assert.Equal(t, FailureToolNotFound, KindOf(wrapped))

	assert.Equal(t, FailureInternal, KindOf(errors.New("plain")))
}

func TestResultEnvelopeInvariant(t *testing.T) {
	ok := SuccessResult("added")
	assert.True(t, ok.Success)
	assert.Equal(t, "added", ok.Result)
	assert.Nil(t, ok.Error)

	bad := FailureResult("it broke")
	assert.False(t, bad.Success)
	assert.Nil(t, bad.Result)
	assert.Equal(t, "it broke", *bad.Error)
}
