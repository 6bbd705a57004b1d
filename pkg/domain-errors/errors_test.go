package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeNotFound, "investor not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeConflict, "locked"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("matches inner coded cause", func(t *testing.T) {
		inner := New(CodeTimeout, "deadline")
		err := Wrap(inner, CodeInternal, "persist failed")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeTimeout))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))

	cause := errors.New("connection reset")
	err := Wrap(cause, CodeBadGateway, "provider call failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeBadGateway, CodeOf(err))
	assert.Equal(t, "provider call failed", MessageOf(err))
	assert.Equal(t, CodeInternal, CodeOf(cause))
}
