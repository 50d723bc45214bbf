package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCharacterNotFoundErrorAnswers500(t *testing.T) {
	err := NewCharacterNotFoundError("Nobody")

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, CodeCharacterNotFound, err.Code)
	assert.Contains(t, err.Message, `"Nobody"`)
}

func TestFromErrorPreservesAppError(t *testing.T) {
	original := NewValidationError("charName is required")
	wrapped := fmt.Errorf("handling request: %w", original)

	converted := FromError(wrapped)
	assert.Equal(t, http.StatusBadRequest, converted.StatusCode)
	assert.Equal(t, CodeValidation, converted.Code)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	converted := FromError(errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, converted.StatusCode)
	assert.Equal(t, CodeInternal, converted.Code)
	assert.Equal(t, "disk on fire", converted.Message)
}

func TestIsCode(t *testing.T) {
	err := NewUpstreamError(errors.New("gateway timeout"))

	assert.True(t, IsCode(err, CodeUpstream))
	assert.False(t, IsCode(err, CodeValidation))
	assert.False(t, IsCode(errors.New("plain"), CodeUpstream))
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, GetStatusCode(NewValidationError("bad")))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(errors.New("plain")))
}
