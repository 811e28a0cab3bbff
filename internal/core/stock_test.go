package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publimar/internal/core"
)

func TestApplyStockDelta(t *testing.T) {
	v := core.ProductVariant{ID: 10, Stock: 5}

	// Draining to exactly zero is allowed.
	out, err := core.ApplyStockDelta(v, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Stock)
	assert.Equal(t, 5, v.Stock, "input variant must be untouched")

	// One below zero is not.
	out, err = core.ApplyStockDelta(v, -6)
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
	assert.Equal(t, 5, out.Stock, "failed adjustment returns the variant unchanged")

	// Restock.
	out, err = core.ApplyStockDelta(v, 20)
	require.NoError(t, err)
	assert.Equal(t, 25, out.Stock)
}

func TestApplyVariantDelta_TouchesOnlyMatch(t *testing.T) {
	variants := []core.ProductVariant{
		{ID: 10, Size: "1x1m", Stock: 25},
		{ID: 11, Size: "2x1m", Stock: 8},
		{ID: 12, Size: "3x1m", Stock: 2},
	}

	out, err := core.ApplyVariantDelta(variants, 11, -3)
	require.NoError(t, err)
	assert.Equal(t, 25, out[0].Stock)
	assert.Equal(t, 5, out[1].Stock)
	assert.Equal(t, 2, out[2].Stock)
	assert.Equal(t, 8, variants[1].Stock, "input slice must be untouched")

	_, err = core.ApplyVariantDelta(variants, 99, -1)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = core.ApplyVariantDelta(variants, 12, -3)
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
}
