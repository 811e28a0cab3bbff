package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publimar/internal/core"
)

func bannerProduct() core.Product {
	return core.Product{
		ID:          1,
		Code:        "BAN-01",
		Name:        "Vinyl banner",
		Description: "Printed vinyl banner",
		BasePrice:   dec("120"),
		Variants: []core.ProductVariant{
			{ID: 10, ProductID: 1, Size: "1x1m", Price: dec("100"), Stock: 25},
			{ID: 11, ProductID: 1, Size: "2x1m", Price: dec("180"), Stock: 8},
		},
	}
}

func stickerProduct() core.Product {
	// No variants: price comes from the product itself.
	return core.Product{ID: 2, Code: "STK-01", Name: "Sticker sheet", BasePrice: dec("15")}
}

func TestNewLineItem_SnapshotsVariant(t *testing.T) {
	p := bannerProduct()
	variantID := 11

	item, err := core.NewLineItem(p, &variantID, 3, dec("10"), "logo both sides")
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 1, item.Product.ProductID)
	assert.Equal(t, "BAN-01", item.Product.Code)
	require.NotNil(t, item.Variant)
	assert.Equal(t, 11, item.Variant.VariantID)
	assert.Equal(t, "2x1m", item.Variant.Size)
	assert.Equal(t, 8, item.Variant.StockAtSelection)
	assertDecimal(t, "180", item.UnitPrice)
	assertDecimal(t, "486", item.Subtotal) // 180 * 3 * 0.9
}

func TestNewLineItem_VariantRules(t *testing.T) {
	p := bannerProduct()

	// Multiple variants, none chosen.
	_, err := core.NewLineItem(p, nil, 1, decimal.Zero, "")
	assert.ErrorIs(t, err, core.ErrMissingSelection)

	// Unknown variant.
	unknown := 99
	_, err = core.NewLineItem(p, &unknown, 1, decimal.Zero, "")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// Single variant is selected implicitly.
	single := p
	single.Variants = p.Variants[:1]
	item, err := core.NewLineItem(single, nil, 2, decimal.Zero, "")
	require.NoError(t, err)
	require.NotNil(t, item.Variant)
	assert.Equal(t, 10, item.Variant.VariantID)
	assertDecimal(t, "200", item.Subtotal)

	// Variant-less product uses the base price.
	item, err = core.NewLineItem(stickerProduct(), nil, 4, decimal.Zero, "")
	require.NoError(t, err)
	assert.Nil(t, item.Variant)
	assertDecimal(t, "15", item.UnitPrice)
	assertDecimal(t, "60", item.Subtotal)
}

func TestAddItem_AppendsWithoutMutating(t *testing.T) {
	variantID := 10
	items, first, err := core.AddItem(nil, bannerProduct(), &variantID, 1, decimal.Zero, "")
	require.NoError(t, err)
	require.Len(t, items, 1)

	more, second, err := core.AddItem(items, stickerProduct(), nil, 2, decimal.Zero, "")
	require.NoError(t, err)
	require.Len(t, more, 2)
	assert.Len(t, items, 1, "original slice must be untouched")
	assert.Equal(t, first.ID, more[0].ID)
	assert.Equal(t, second.ID, more[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestUpdateItem_RecomputesSubtotal(t *testing.T) {
	variantID := 10
	items, item, err := core.AddItem(nil, bannerProduct(), &variantID, 1, decimal.Zero, "")
	require.NoError(t, err)

	qty := 5
	discount := dec("20")
	updated, err := core.UpdateItem(items, item.ID, core.ItemPatch{Quantity: &qty, DiscountPercent: &discount})
	require.NoError(t, err)
	assertDecimal(t, "400", updated[0].Subtotal) // 100 * 5 * 0.8
	assertDecimal(t, "100", items[0].Subtotal, "input slice must be untouched")

	// Patch that breaks validation is rejected.
	bad := -1
	_, err = core.UpdateItem(items, item.ID, core.ItemPatch{Quantity: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	// Unknown item ID.
	_, err = core.UpdateItem(items, "nope", core.ItemPatch{Quantity: &qty})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRemoveItem_IdempotentAndStable(t *testing.T) {
	variantID := 10
	items, first, err := core.AddItem(nil, bannerProduct(), &variantID, 1, decimal.Zero, "")
	require.NoError(t, err)
	items, _, err = core.AddItem(items, stickerProduct(), nil, 1, decimal.Zero, "")
	require.NoError(t, err)
	items, third, err := core.AddItem(items, stickerProduct(), nil, 3, decimal.Zero, "")
	require.NoError(t, err)

	once := core.RemoveItem(items, items[1].ID)
	require.Len(t, once, 2)
	assert.Equal(t, first.ID, once[0].ID, "ordering of untouched items is stable")
	assert.Equal(t, third.ID, once[1].ID)

	twice := core.RemoveItem(once, items[1].ID)
	assert.Equal(t, once, twice, "second removal is a no-op")
}
