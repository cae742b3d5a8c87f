package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Status(t *testing.T) {
	tests := []struct {
		err      *AppError
		expected int
	}{
		{NewValidationError("bad"), 400},
		{NewNotFoundError("Post", 3), 404},
		{NewForbiddenError("nope"), 403},
		{NewStoreError(errors.New("conn refused")), 500},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Status())
		})
	}
}

func TestStatusOf_WrappedAndPlainErrors(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewForbiddenError("not yours"))
	assert.Equal(t, 403, StatusOf(wrapped))
	assert.True(t, HasCode(wrapped, CodeForbidden))
	assert.Equal(t, 500, StatusOf(errors.New("boom")))
	assert.False(t, HasCode(errors.New("boom"), CodeNotFound))
}

func TestStoreError_UnwrapsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := NewStoreError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Datastore failure: timeout", err.Error())
}

func TestNotFoundError_Message(t *testing.T) {
	assert.Equal(t, "Post with ID 12 not found", NewNotFoundError("Post", 12).Error())
}

func TestHasBody(t *testing.T) {
	assert.False(t, HasBody("   ", nil))
	assert.True(t, HasBody("", []string{"img/1.png"}))
	assert.True(t, HasBody("hello", nil))
}
