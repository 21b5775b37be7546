package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		err := New(CodeNotFound, "reference not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("callback: %w", New(CodeValidation, "bad score"))
		assert.True(t, HasCode(err, CodeValidation))
	})

	t.Run("inner code of a wrapped domain error", func(t *testing.T) {
		err := Wrap(New(CodeConflict, "duplicate"), CodeInternal, "enqueue failed")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeConflict))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestErrorsIs(t *testing.T) {
	err := New(CodeUnauthorized, "invalid token")
	require.ErrorIs(t, err, New(CodeUnauthorized, "invalid token"))
	require.ErrorIs(t, err, &Error{Code: CodeUnauthorized})
	require.NotErrorIs(t, err, New(CodeUnauthorized, "token has expired"))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "nothing"))
}
