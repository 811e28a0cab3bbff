package core

import "fmt"

// ApplyStockDelta returns a copy of the variant with the signed delta applied
// to its stock (negative for a sale, positive for a restock). The variant is
// left unchanged when the delta would drive stock below zero.
func ApplyStockDelta(v ProductVariant, delta int) (ProductVariant, error) {
	newStock := v.Stock + delta
	if newStock < 0 {
		return v, fmt.Errorf("%w: variant %d has %d, delta %d", ErrInsufficientStock, v.ID, v.Stock, delta)
	}
	v.Stock = newStock
	return v, nil
}

// ApplyVariantDelta applies a stock delta to exactly the variant matching
// variantID within a product's variant list, passing all other variants
// through unchanged. The returned slice is a new allocation.
func ApplyVariantDelta(variants []ProductVariant, variantID, delta int) ([]ProductVariant, error) {
	idx := -1
	for i := range variants {
		if variants[i].ID == variantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: variant %d", ErrNotFound, variantID)
	}

	adjusted, err := ApplyStockDelta(variants[idx], delta)
	if err != nil {
		return nil, err
	}

	out := make([]ProductVariant, len(variants))
	copy(out, variants)
	out[idx] = adjusted
	return out, nil
}
