package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// LineSubtotal computes unitPrice * quantity * (1 - discountPercent/100).
// Accumulation stays at full decimal precision; rounding to two digits is a
// presentation concern and must not happen here.
func LineSubtotal(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, fmt.Errorf("%w: quantity must be >= 1, got %d", ErrInvalidInput, quantity)
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: unit price cannot be negative, got %s", ErrInvalidInput, unitPrice)
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(oneHundred) {
		return decimal.Zero, fmt.Errorf("%w: discount must be within [0, 100], got %s", ErrInvalidInput, discountPercent)
	}

	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(oneHundred))
	return gross.Mul(factor), nil
}

// DocumentSubtotal sums the stored subtotal of each line item. It does not
// recompute line subtotals: callers keep each item current via LineSubtotal
// whenever quantity, price, or discount change.
func DocumentSubtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

// TaxAmount computes subtotal * taxRatePercent/100.
func TaxAmount(subtotal, taxRatePercent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRatePercent).Div(oneHundred)
}

// Total computes subtotal + taxAmount.
func Total(subtotal, taxAmount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(taxAmount)
}
