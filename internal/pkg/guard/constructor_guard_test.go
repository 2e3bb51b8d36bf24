package guard_test

import (
	"errors"
	"testing"

	"dispatch/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstructorGuard(t *testing.T) {
	g := guard.NewConstructorGuard()
	require.NoError(t, g.Validate(errors.New("should not be returned")))
}

func TestConstructorGuard_ZeroValueFailsValidation(t *testing.T) {
	var g guard.ConstructorGuard

	errNotConstructed := errors.New("object must be created via constructor")
	err := g.Validate(errNotConstructed)

	require.Error(t, err)
	assert.Equal(t, errNotConstructed, err)
}

func TestConstructorGuard_NilValidationErrorFallsBackToDefault(t *testing.T) {
	var g guard.ConstructorGuard

	err := g.Validate(nil)

	require.Error(t, err)
	assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
}

func TestConstructorGuard_EmbeddedInStruct(t *testing.T) {
	errNotConstructed := errors.New("widget must be created via NewWidget")

	type widget struct {
		guard guard.ConstructorGuard
	}

	constructed := widget{guard: guard.NewConstructorGuard()}
	require.NoError(t, constructed.guard.Validate(errNotConstructed))

	var zero widget
	require.ErrorIs(t, zero.guard.Validate(errNotConstructed), errNotConstructed)
}
