package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publimar/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// assertDecimal compares decimals by value, not representation.
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "expected %s, got %s: %v", want, got, msgAndArgs)
}

func TestLineSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int
		discount string
		want     string
		wantErr  error
	}{
		{name: "no discount", price: "100", quantity: 3, discount: "0", want: "300"},
		{name: "ten percent off", price: "100", quantity: 3, discount: "10", want: "270"},
		{name: "full discount", price: "50", quantity: 2, discount: "100", want: "0"},
		{name: "fractional price", price: "19.99", quantity: 4, discount: "25", want: "59.97"},
		{name: "free product", price: "0", quantity: 10, discount: "0", want: "0"},
		{name: "zero quantity", price: "100", quantity: 0, discount: "0", wantErr: core.ErrInvalidInput},
		{name: "negative quantity", price: "100", quantity: -2, discount: "0", wantErr: core.ErrInvalidInput},
		{name: "negative price", price: "-1", quantity: 1, discount: "0", wantErr: core.ErrInvalidInput},
		{name: "discount above 100", price: "100", quantity: 1, discount: "101", wantErr: core.ErrInvalidInput},
		{name: "negative discount", price: "100", quantity: 1, discount: "-5", wantErr: core.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.LineSubtotal(dec(tt.price), tt.quantity, dec(tt.discount))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestLineSubtotal_MonotonicInDiscount(t *testing.T) {
	price := dec("73.50")
	prev := decimal.NewFromInt(1 << 30)
	for d := 0; d <= 100; d += 5 {
		got, err := core.LineSubtotal(price, 7, decimal.NewFromInt(int64(d)))
		require.NoError(t, err)
		assert.True(t, got.LessThanOrEqual(prev),
			"subtotal must not increase with discount: d=%d got %s prev %s", d, got, prev)
		prev = got
	}
}

func TestDocumentSubtotal_OrderIndependent(t *testing.T) {
	items := []core.LineItem{
		{ID: "a", Subtotal: dec("270")},
		{ID: "b", Subtotal: dec("50")},
		{ID: "c", Subtotal: dec("0.01")},
	}
	reversed := []core.LineItem{items[2], items[1], items[0]}

	assertDecimal(t, "320.01", core.DocumentSubtotal(items))
	assert.True(t, core.DocumentSubtotal(items).Equal(core.DocumentSubtotal(reversed)))
	assertDecimal(t, "0", core.DocumentSubtotal(nil))
}

func TestTaxAndTotalReconcile(t *testing.T) {
	subtotal := dec("320")
	tax := core.TaxAmount(subtotal, dec("21"))
	assertDecimal(t, "67.2", tax)
	assertDecimal(t, "387.2", core.Total(subtotal, tax))

	// total == subtotal + taxAmount for arbitrary rates
	for _, rate := range []string{"0", "10.5", "21", "27"} {
		ta := core.TaxAmount(subtotal, dec(rate))
		assert.True(t, core.Total(subtotal, ta).Equal(subtotal.Add(ta)), "rate %s", rate)
	}
}

func TestPricing_NoAccumulationDrift(t *testing.T) {
	// 0.1 added many times stays exact under decimal arithmetic; this is the
	// failure mode of binary floating point the pricing core exists to avoid.
	var items []core.LineItem
	for i := 0; i < 1000; i++ {
		items = append(items, core.LineItem{Subtotal: dec("0.1")})
	}
	assertDecimal(t, "100", core.DocumentSubtotal(items))
}
