package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeNotFound, "shipment not found"))
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeForbidden))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load tariffs")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load tariffs: connection refused", err.Error())
}

func TestFieldDetail(t *testing.T) {
	err := Field("phone", "phone must be in the format +2507XXXXXXXX")
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "phone must be in the format +2507XXXXXXXX", err.Fields["phone"])

	err.WithField("password", "password is required")
	assert.Len(t, err.Fields, 2)
}
