package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("signup: %w", Clone(ErrEmailTaken, "ana@example.com already registered"))
	got := FromError(wrapped)
	assert.Equal(t, "EMAIL_TAKEN", got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "ana@example.com already registered", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorContains(t, got, "boom")
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	_ = Clone(ErrNotFound, "task not found")
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}
