package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CheckError
		expected string
	}{
		{
			name:     "assertion with scenario",
			err:      NewAssertionError("status == 200", "got 404").WithScenario("post-by-id"),
			expected: "[post-by-id] assertion_error: status == 200: got 404",
		},
		{
			name:     "transport without scenario",
			err:      NewTransportError("dial tcp: connection refused", nil),
			expected: "transport_error: dial tcp: connection refused",
		},
		{
			name:     "shape error",
			err:      NewShapeError("userId == 1", "field userId is missing", nil),
			expected: "shape_error: userId == 1: field userId is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestCheckError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransportError("request failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestWithScenario_DoesNotMutateOriginal(t *testing.T) {
	orig := NewAssertionError("size == 100", "got 99")
	scoped := orig.WithScenario("all-posts")

	assert.Empty(t, orig.Scenario)
	assert.Equal(t, "all-posts", scoped.Scenario)
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewShapeError("title", "not a string", nil))

	assert.True(t, IsType(wrapped, ErrorTypeShape))
	assert.False(t, IsType(wrapped, ErrorTypeAssertion))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeShape))
	assert.False(t, IsType(nil, ErrorTypeShape))
}

func TestAttributeTo(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, AttributeTo("x", nil))
	})

	t.Run("check error gets scenario", func(t *testing.T) {
		err := AttributeTo("comments", NewAssertionError("size > 0", "got 0"))
		var ce *CheckError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "comments", ce.Scenario)
		assert.Equal(t, ErrorTypeAssertion, ce.Type)
	})

	t.Run("plain error becomes transport error", func(t *testing.T) {
		cause := errors.New("EOF")
		err := AttributeTo("comments", cause)
		assert.True(t, IsType(err, ErrorTypeTransport))
		assert.ErrorIs(t, err, cause)
	})
}
