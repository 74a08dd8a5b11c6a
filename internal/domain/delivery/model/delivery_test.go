package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Run("Forward path is allowed step by step", func(t *testing.T) {
		assert.True(t, CanTransition(StatusReady, StatusShipping))
		assert.True(t, CanTransition(StatusShipping, StatusArrived))
		assert.True(t, CanTransition(StatusArrived, StatusReturnRequested))
		assert.True(t, CanTransition(StatusReturnRequested, StatusReturnArrived))
		assert.True(t, CanTransition(StatusReturnArrived, StatusReturned))
	})

	t.Run("Cancel path is allowed before arrival", func(t *testing.T) {
		assert.True(t, CanTransition(StatusReady, StatusCancelRequested))
		assert.True(t, CanTransition(StatusShipping, StatusCancelRequested))
		assert.True(t, CanTransition(StatusCancelRequested, StatusCanceled))
	})

	t.Run("Skipping and reversing are rejected", func(t *testing.T) {
		assert.False(t, CanTransition(StatusReady, StatusArrived))
		assert.False(t, CanTransition(StatusShipping, StatusReady))
		assert.False(t, CanTransition(StatusArrived, StatusShipping))
		assert.False(t, CanTransition(StatusArrived, StatusCancelRequested))
		assert.False(t, CanTransition(StatusReady, StatusReturned))
	})

	t.Run("Terminal states have no exits", func(t *testing.T) {
		for _, target := range []string{
			StatusReady, StatusShipping, StatusArrived,
			StatusCancelRequested, StatusReturnRequested,
		} {
			assert.False(t, CanTransition(StatusCanceled, target))
			assert.False(t, CanTransition(StatusReturned, target))
		}
	})

	t.Run("Unknown states are rejected", func(t *testing.T) {
		assert.False(t, CanTransition("LOST", StatusShipping))
		assert.False(t, CanTransition(StatusReady, "LOST"))
	})
}
