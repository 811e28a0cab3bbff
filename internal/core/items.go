package core

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product/variant entry within a quote or order. Subtotal is
// derived and must always equal Quantity * UnitPrice * (1 - DiscountPercent/100);
// every constructor and patch path recomputes it through LineSubtotal.
type LineItem struct {
	ID              string           `json:"id"`
	Product         ProductSnapshot  `json:"product"`
	Variant         *VariantSnapshot `json:"variant,omitempty"`
	Quantity        int              `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Notes           string           `json:"notes,omitempty"`
}

// ItemPatch describes a partial edit to a line item. Nil fields are left
// untouched. Applying a patch always replaces the whole item and recomputes
// its subtotal; items are never mutated in place.
type ItemPatch struct {
	Quantity        *int
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
	Notes           *string
}

// NewLineItem snapshots the product (and chosen variant, when the product has
// variants) and computes the derived subtotal. The unit price comes from the
// variant when one is chosen, otherwise from the product's base price.
// A product with more than one variant requires an explicit selection.
func NewLineItem(p Product, variantID *int, quantity int, discountPercent decimal.Decimal, notes string) (LineItem, error) {
	var variant *ProductVariant
	switch {
	case variantID != nil:
		for i := range p.Variants {
			if p.Variants[i].ID == *variantID {
				variant = &p.Variants[i]
				break
			}
		}
		if variant == nil {
			return LineItem{}, fmt.Errorf("%w: variant %d on product %s", ErrNotFound, *variantID, p.Code)
		}
	case len(p.Variants) == 1:
		variant = &p.Variants[0]
	case len(p.Variants) > 1:
		return LineItem{}, fmt.Errorf("%w: product %s has %d sizes", ErrMissingSelection, p.Code, len(p.Variants))
	}

	unitPrice := p.BasePrice
	if variant != nil {
		unitPrice = variant.Price
	}

	subtotal, err := LineSubtotal(unitPrice, quantity, discountPercent)
	if err != nil {
		return LineItem{}, err
	}

	item := LineItem{
		ID: uuid.NewString(),
		Product: ProductSnapshot{
			ProductID:   p.ID,
			Code:        p.Code,
			Name:        p.Name,
			Description: p.Description,
		},
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discountPercent,
		Subtotal:        subtotal,
		Notes:           notes,
	}
	if variant != nil {
		item.Variant = &VariantSnapshot{
			VariantID:        variant.ID,
			Size:             variant.Size,
			SKU:              variant.SKU,
			StockAtSelection: variant.Stock,
		}
	}
	return item, nil
}

// AddItem appends a freshly built line item, returning a new slice.
func AddItem(items []LineItem, p Product, variantID *int, quantity int, discountPercent decimal.Decimal, notes string) ([]LineItem, LineItem, error) {
	item, err := NewLineItem(p, variantID, quantity, discountPercent, notes)
	if err != nil {
		return nil, LineItem{}, err
	}
	out := make([]LineItem, 0, len(items)+1)
	out = append(out, items...)
	out = append(out, item)
	return out, item, nil
}

// UpdateItem replaces the item matching itemID with a patched copy, keeping
// the order of untouched items stable. The subtotal is recomputed from the
// patched fields.
func UpdateItem(items []LineItem, itemID string, patch ItemPatch) ([]LineItem, error) {
	idx := -1
	for i := range items {
		if items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: line item %s", ErrNotFound, itemID)
	}

	next := items[idx]
	if patch.Quantity != nil {
		next.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		next.UnitPrice = *patch.UnitPrice
	}
	if patch.DiscountPercent != nil {
		next.DiscountPercent = *patch.DiscountPercent
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}

	subtotal, err := LineSubtotal(next.UnitPrice, next.Quantity, next.DiscountPercent)
	if err != nil {
		return nil, err
	}
	next.Subtotal = subtotal

	out := make([]LineItem, len(items))
	copy(out, items)
	out[idx] = next
	return out, nil
}

// RemoveItem filters out the item matching itemID. Removing an absent ID is a
// no-op, not an error, so the operation is idempotent.
func RemoveItem(items []LineItem, itemID string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ID != itemID {
			out = append(out, item)
		}
	}
	return out
}
