package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidation_IsAndMessage(t *testing.T) {
	err := Validation("content missing")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "content missing", Message(err))
}

func TestMessage_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("get note: %w", ErrMalformedID)

	assert.True(t, errors.Is(err, ErrMalformedID))
	assert.Equal(t, "malformatted id", Message(err))
}

func TestMessage_WrappedCustomError(t *testing.T) {
	err := fmt.Errorf("create user: %w", Conflict("username must be unique"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "username must be unique", Message(err))
}

func TestUnauthorized_CustomMessage(t *testing.T) {
	err := Unauthorized("account disabled, please contact admin")

	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "account disabled, please contact admin", err.Error())
}
