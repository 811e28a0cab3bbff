package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order state machine:
//
//	IN_PROCESS → COMPLETED
//	IN_PROCESS → CANCELLED
//
// COMPLETED and CANCELLED are terminal.
type OrderStatus string

const (
	OrderInProcess OrderStatus = "IN_PROCESS"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Payment is one immutable entry in an order's payment ledger. Entries are
// never edited or removed once appended.
type Payment struct {
	ID     int             `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method PaymentMethod   `json:"method"`
	Bank   string          `json:"bank,omitempty"`
	Notes  string          `json:"notes,omitempty"`
	PaidAt time.Time       `json:"paid_at"`
}

// Order is a confirmed unit of work, created from scratch or derived from a
// confirmed quote. Balance starts at Total - DownPayment and is decremented
// by the payment ledger; it never goes negative.
type Order struct {
	ID                int             `json:"id"`
	Number            string          `json:"number"`
	Client            ClientSnapshot  `json:"client"`
	Items             []LineItem      `json:"items"`
	TaxRatePercent    decimal.Decimal `json:"tax_rate_percent"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
	Status            OrderStatus     `json:"status"`
	DownPayment       decimal.Decimal `json:"down_payment"`
	Balance           decimal.Decimal `json:"balance"`
	Payments          []Payment       `json:"payments,omitempty"`
	EstimatedDelivery time.Time       `json:"estimated_delivery,omitempty"`
	StartedAt         *time.Time      `json:"started_at,omitempty"`
	DeliveredAt       *time.Time      `json:"delivered_at,omitempty"`
	QuoteID           *int            `json:"quote_id,omitempty"`
	QuoteNumber       string          `json:"quote_number,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Recalculate rederives Subtotal, TaxAmount, and Total from the current
// items and tax rate. Balance is not touched: it belongs to the payment
// ledger once the order exists.
func (o *Order) Recalculate() {
	o.Subtotal = DocumentSubtotal(o.Items)
	o.TaxAmount = TaxAmount(o.Subtotal, o.TaxRatePercent)
	o.Total = Total(o.Subtotal, o.TaxAmount)
}

// Complete transitions IN_PROCESS → COMPLETED and stamps DeliveredAt.
func (o *Order) Complete(now time.Time) error {
	if o.Status != OrderInProcess {
		return fmt.Errorf("%w: order %s cannot be completed from %s", ErrInvalidTransition, o.Number, o.Status)
	}
	o.Status = OrderCompleted
	o.DeliveredAt = &now
	return nil
}

// Cancel transitions IN_PROCESS → CANCELLED. CANCELLED is terminal.
func (o *Order) Cancel() error {
	if o.Status != OrderInProcess {
		return fmt.Errorf("%w: order %s cannot be cancelled from %s", ErrInvalidTransition, o.Number, o.Status)
	}
	o.Status = OrderCancelled
	return nil
}

// RecordPayment validates and appends a payment to the ledger, decrementing
// the outstanding balance. It is independent of the status machine: payments
// are accepted while the order is IN_PROCESS or even after completion.
func (o *Order) RecordPayment(amount decimal.Decimal, method PaymentMethod, bank, notes string, now time.Time) (Payment, error) {
	if !ValidPaymentMethod(method) {
		return Payment{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, method)
	}
	if !amount.IsPositive() {
		return Payment{}, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(o.Balance) {
		return Payment{}, fmt.Errorf("%w: amount %s exceeds balance %s", ErrInvalidAmount, amount, o.Balance)
	}
	if method == PaymentTransfer && bank == "" {
		return Payment{}, fmt.Errorf("%w", ErrMissingBank)
	}

	p := Payment{
		Amount: amount,
		Method: method,
		Bank:   bank,
		Notes:  notes,
		PaidAt: now,
	}
	o.Payments = append(o.Payments, p)
	o.Balance = o.Balance.Sub(amount)
	return p, nil
}

// NewOrderFromQuote builds an IN_PROCESS order from a quote, copying its
// client snapshot, items, and totals, and linking back to the quote. The
// source quote is not mutated: a confirmed quote stays CONFIRMED.
func NewOrderFromQuote(q Quote, downPayment decimal.Decimal, estimatedDelivery time.Time, now time.Time) (Order, error) {
	if downPayment.IsNegative() {
		return Order{}, fmt.Errorf("%w: down payment cannot be negative, got %s", ErrInvalidInput, downPayment)
	}
	if downPayment.GreaterThan(q.Total) {
		return Order{}, fmt.Errorf("%w: down payment %s exceeds quote total %s", ErrInvalidAmount, downPayment, q.Total)
	}

	items := make([]LineItem, len(q.Items))
	copy(items, q.Items)

	quoteID := q.ID
	return Order{
		Client:            q.Client,
		Items:             items,
		TaxRatePercent:    q.TaxRatePercent,
		Subtotal:          q.Subtotal,
		TaxAmount:         q.TaxAmount,
		Total:             q.Total,
		Status:            OrderInProcess,
		DownPayment:       downPayment,
		Balance:           q.Total.Sub(downPayment),
		EstimatedDelivery: estimatedDelivery,
		StartedAt:         &now,
		QuoteID:           &quoteID,
		QuoteNumber:       q.Number,
		CreatedAt:         now,
	}, nil
}
