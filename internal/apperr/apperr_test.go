package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidation_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("create reminder: %w", Validation("Title", "is required"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, IsClientError(err))
	assert.Equal(t, "create reminder: Title: is required", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "Title", ve.Field)
}

func TestNotFound(t *testing.T) {
	err := NotFound("reminder")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, IsClientError(err))
	assert.Equal(t, "reminder not found", err.Error())
}
