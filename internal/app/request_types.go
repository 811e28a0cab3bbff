package app

import (
	"time"

	"github.com/shopspring/decimal"

	"publimar/internal/core"
)

// ClientRequest carries the editable fields of a client record.
type ClientRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
	TaxID   string
}

// VariantRequest is one size/price/stock combination for product creation.
type VariantRequest struct {
	Size  string
	SKU   string
	Price decimal.Decimal
	Stock int
}

// CreateProductRequest is the input for creating a new catalog product.
type CreateProductRequest struct {
	Code        string
	Name        string
	Description string
	BasePrice   decimal.Decimal
	Variants    []VariantRequest
}

// QuoteLineRequest is a single line within a quote or order request.
type QuoteLineRequest struct {
	ProductID       int
	VariantID       *int
	Quantity        int
	DiscountPercent decimal.Decimal
	Notes           string
}

// CreateQuoteRequest is the input for creating a DRAFT quote.
// TaxRatePercent nil means the default IVA rate.
type CreateQuoteRequest struct {
	ClientID       int
	TaxRatePercent *decimal.Decimal
	ValidUntil     time.Time
	Lines          []QuoteLineRequest
}

// CreateOrderRequest is the input for creating an order from scratch.
type CreateOrderRequest struct {
	ClientID          int
	TaxRatePercent    *decimal.Decimal
	DownPayment       decimal.Decimal
	EstimatedDelivery time.Time
	Lines             []QuoteLineRequest
}

// OrderFromQuoteRequest is the input for deriving an order from a quote.
type OrderFromQuoteRequest struct {
	QuoteRef          string
	DownPayment       decimal.Decimal
	EstimatedDelivery time.Time
}

// PaymentRequest is the input for recording one payment against an order.
type PaymentRequest struct {
	Amount decimal.Decimal
	Method core.PaymentMethod
	Bank   string
	Notes  string
}
