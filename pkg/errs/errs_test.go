package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("Wrapped sentinel keeps kind and identity", func(t *testing.T) {
		err := New(KindConflict, ErrOutOfStock).WithOrder("order-1")

		assert.Equal(t, KindConflict, KindOf(err))
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.Contains(t, err.Error(), "order=order-1")
	})

	t.Run("Kind survives further wrapping", func(t *testing.T) {
		inner := New(KindRetryableGateway, errors.New("gateway timeout"))
		outer := fmt.Errorf("confirm failed: %w", inner)

		assert.Equal(t, KindRetryableGateway, KindOf(outer))
		assert.True(t, IsRetryable(outer))
	})

	t.Run("Plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
		assert.False(t, IsRetryable(errors.New("boom")))
	})

	t.Run("Transition context is rendered", func(t *testing.T) {
		err := New(KindInvalidTransition, ErrInvalidTransition).
			WithTransition("READY", "ARRIVED").
			WithGatewayStatus(0)

		assert.Contains(t, err.Error(), "transition=READY->ARRIVED")
	})
}
