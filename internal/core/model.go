package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client represents a customer master record.
type Client struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	TaxID     string    `json:"tax_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Product represents a sellable item in the catalog. Products with size
// variants carry their price and stock on the variants; BasePrice is the
// fallback for variant-less products.
type Product struct {
	ID          int              `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	IsActive    bool             `json:"is_active"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ProductVariant is one size/price/stock combination of a product.
// Stock never goes negative; ApplyVariantDelta enforces the floor.
type ProductVariant struct {
	ID        int             `json:"id"`
	ProductID int             `json:"product_id"`
	Size      string          `json:"size"`
	SKU       string          `json:"sku,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// ClientSnapshot is the denormalized copy of client identity embedded in a
// quote or order at creation time. Historical documents stay immutable
// against later edits to the client registry.
type ClientSnapshot struct {
	ClientID int    `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	TaxID    string `json:"tax_id"`
}

// ProductSnapshot is the immutable copy of product identity captured when a
// line item is added.
type ProductSnapshot struct {
	ProductID   int    `json:"product_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VariantSnapshot is the immutable copy of the chosen variant, including the
// stock level observed at selection time. Absent for variant-less products.
type VariantSnapshot struct {
	VariantID        int    `json:"variant_id"`
	Size             string `json:"size"`
	SKU              string `json:"sku,omitempty"`
	StockAtSelection int    `json:"stock_at_selection"`
}

// SnapshotClient builds the embedded copy of a client record.
func SnapshotClient(c Client) ClientSnapshot {
	return ClientSnapshot{
		ClientID: c.ID,
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  c.Address,
		TaxID:    c.TaxID,
	}
}

// PaymentMethod enumerates the accepted payment channels.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentCreditCard  PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard   PaymentMethod = "DEBIT_CARD"
	PaymentTransfer    PaymentMethod = "TRANSFER"
	PaymentMercadoPago PaymentMethod = "MERCADOPAGO"
)

// ValidPaymentMethod reports whether m is one of the accepted channels.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentTransfer, PaymentMercadoPago:
		return true
	}
	return false
}

// DefaultTaxRatePercent is the IVA rate applied to new quotes and orders.
var DefaultTaxRatePercent = decimal.NewFromInt(21)
