package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create sale: %w", InsufficientStock("p1", 5, 2))

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrOutOfStock)

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "p1", appErr.ProductID)
	assert.Equal(t, 5, appErr.Requested)
	assert.Equal(t, 2, appErr.Available)
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("deadlock")
	err := Persistence("decrement inventory", cause, true)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsTransient(err))
	assert.Equal(t, "decrement inventory: deadlock", err.Error())
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("product", "abc")
	assert.Equal(t, "product abc not found", err.Error())
	assert.False(t, IsTransient(err))
}
