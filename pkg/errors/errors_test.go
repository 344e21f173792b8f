package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.EqualError(t, err.Unwrap(), "boom")
}

func TestCloneKeepsIdentity(t *testing.T) {
	cloned := Clone(ErrAlreadyProcessed, "intern already approved")
	assert.Equal(t, "intern already approved", cloned.Message)
	assert.True(t, errors.Is(cloned, ErrAlreadyProcessed))
	assert.False(t, errors.Is(cloned, ErrNotFound))

	wrapped := fmt.Errorf("approve: %w", cloned)
	assert.True(t, errors.Is(wrapped, ErrAlreadyProcessed))
	assert.Equal(t, http.StatusConflict, FromError(wrapped).Status)
}

func TestHelpers(t *testing.T) {
	cause := errors.New("pq: connection reset")
	assert.Equal(t, ErrInternal.Code, Internal(cause, "failed").Code)
	assert.Equal(t, http.StatusBadRequest, Validation(cause, "bad").Status)
	assert.Contains(t, Internal(cause, "failed").Error(), "connection reset")
}
