package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CreateOrderInput carries everything needed to create an order from scratch.
// TaxRatePercent nil means the default IVA rate.
type CreateOrderInput struct {
	ClientID          int
	TaxRatePercent    *decimal.Decimal
	DownPayment       decimal.Decimal
	EstimatedDelivery time.Time
	Items             []QuoteItemInput
}

// OrderService manages order persistence, the order status lifecycle, the
// append-only payment ledger, and stock deduction at order creation.
type OrderService interface {
	// CreateOrder creates an IN_PROCESS order and deducts stock for every
	// line item atomically with the insert: a shortage on any variant aborts
	// the whole order.
	CreateOrder(ctx context.Context, input CreateOrderInput, numbering NumberingService, catalog CatalogService) (*Order, error)
	// CreateOrderFromQuote derives an order from a confirmed quote, copying
	// its client snapshot, items, and totals. The quote keeps its status.
	CreateOrderFromQuote(ctx context.Context, quoteID int, downPayment decimal.Decimal, estimatedDelivery time.Time, numbering NumberingService, catalog CatalogService, quotes QuoteService) (*Order, error)

	GetOrder(ctx context.Context, orderID int) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	// GetOrders returns order headers (no items or payments), newest first,
	// optionally filtered by status.
	GetOrders(ctx context.Context, status *string) ([]Order, error)

	CompleteOrder(ctx context.Context, orderID int) (*Order, error)
	CancelOrder(ctx context.Context, orderID int) (*Order, error)

	// RecordOrderPayment appends a payment and decrements the balance under
	// a row lock. Payments are independent of the status machine.
	RecordOrderPayment(ctx context.Context, orderID int, amount decimal.Decimal, method PaymentMethod, bank, notes string) (*Order, error)
}

type orderService struct {
	pool *pgxpool.Pool
}

func NewOrderService(pool *pgxpool.Pool) OrderService {
	return &orderService{pool: pool}
}

const orderColumns = `id, number, client_id, client_name, client_email, client_phone,
	       client_address, client_tax_id, tax_rate_percent, subtotal, tax_amount, total,
	       status, down_payment, balance, estimated_delivery, started_at, delivered_at,
	       quote_id, quote_number, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o                 Order
		estimatedDelivery *time.Time
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.Client.ClientID, &o.Client.Name, &o.Client.Email, &o.Client.Phone,
		&o.Client.Address, &o.Client.TaxID, &o.TaxRatePercent, &o.Subtotal, &o.TaxAmount, &o.Total,
		&o.Status, &o.DownPayment, &o.Balance, &estimatedDelivery, &o.StartedAt, &o.DeliveredAt,
		&o.QuoteID, &o.QuoteNumber, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if estimatedDelivery != nil {
		o.EstimatedDelivery = *estimatedDelivery
	}
	return &o, nil
}

func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput, numbering NumberingService, catalog CatalogService) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", ErrInvalidInput)
	}
	if input.DownPayment.IsNegative() {
		return nil, fmt.Errorf("%w: down payment cannot be negative", ErrInvalidInput)
	}

	taxRate := DefaultTaxRatePercent
	if input.TaxRatePercent != nil {
		taxRate = *input.TaxRatePercent
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate cannot be negative", ErrInvalidInput)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var client Client
	err = tx.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", input.ClientID,
	).Scan(&client.ID, &client.Name, &client.Email, &client.Phone, &client.Address, &client.TaxID, &client.IsActive, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %d", ErrNotFound, input.ClientID)
		}
		return nil, fmt.Errorf("failed to resolve client %d: %w", input.ClientID, err)
	}

	var items []LineItem
	for i, in := range input.Items {
		product, err := fetchProduct(ctx, tx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		items, _, err = AddItem(items, *product, in.VariantID, in.Quantity, in.DiscountPercent, in.Notes)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	now := time.Now()
	order := Order{
		Client:            SnapshotClient(client),
		Items:             items,
		TaxRatePercent:    taxRate,
		Status:            OrderInProcess,
		DownPayment:       input.DownPayment,
		EstimatedDelivery: input.EstimatedDelivery,
		StartedAt:         &now,
	}
	order.Recalculate()
	if input.DownPayment.GreaterThan(order.Total) {
		return nil, fmt.Errorf("%w: down payment %s exceeds total %s", ErrInvalidAmount, input.DownPayment, order.Total)
	}
	order.Balance = order.Total.Sub(order.DownPayment)

	return s.insertOrder(ctx, tx, order, numbering, catalog)
}

func (s *orderService) CreateOrderFromQuote(ctx context.Context, quoteID int, downPayment decimal.Decimal, estimatedDelivery time.Time, numbering NumberingService, catalog CatalogService, quotes QuoteService) (*Order, error) {
	quote, err := quotes.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	order, err := NewOrderFromQuote(*quote, downPayment, estimatedDelivery, time.Now())
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	return s.insertOrder(ctx, tx, order, numbering, catalog)
}

// insertOrder assigns a number, persists the order with its items, and
// deducts stock — all within tx. The caller's deferred rollback covers every
// failure path; commit happens here.
func (s *orderService) insertOrder(ctx context.Context, tx pgx.Tx, order Order, numbering NumberingService, catalog CatalogService) (*Order, error) {
	number, err := numbering.NextNumberTx(ctx, tx, DocTypeOrder, time.Now().Year())
	if err != nil {
		return nil, err
	}
	order.Number = number

	var estimatedDelivery *time.Time
	if !order.EstimatedDelivery.IsZero() {
		estimatedDelivery = &order.EstimatedDelivery
	}

	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (number, client_id, client_name, client_email, client_phone,
		                    client_address, client_tax_id, tax_rate_percent,
		                    subtotal, tax_amount, total, status, down_payment, balance,
		                    estimated_delivery, started_at, quote_id, quote_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`, order.Number, order.Client.ClientID, order.Client.Name, order.Client.Email, order.Client.Phone,
		order.Client.Address, order.Client.TaxID, order.TaxRatePercent,
		order.Subtotal, order.TaxAmount, order.Total, order.Status, order.DownPayment, order.Balance,
		estimatedDelivery, order.StartedAt, order.QuoteID, order.QuoteNumber,
	).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	if err := replaceLineItemsTx(ctx, tx, "order_items", "order_id", orderID, order.Items); err != nil {
		return nil, err
	}

	// Stock deduction is atomic with the order insert: any shortage rolls
	// back the whole order, never leaving a partial decrement behind.
	if err := catalog.ApplyOrderStockTx(ctx, tx, order.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *orderService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	o.Items, err = fetchLineItems(ctx, s.pool, "order_items", "order_id", orderID)
	if err != nil {
		return nil, err
	}

	o.Payments, err = fetchOrderPayments(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *orderService) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	var orderID int
	err := s.pool.QueryRow(ctx, "SELECT id FROM orders WHERE number = $1", number).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to lookup order by number: %w", err)
	}
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) GetOrders(ctx context.Context, status *string) ([]Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	args := []any{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// transition applies a pure state-machine operation under a row lock and
// persists the resulting status and timestamps.
func (s *orderService) transition(ctx context.Context, orderID int, op func(o *Order) error) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := op(o); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1, delivered_at = $2
		WHERE id = $3
	`, o.Status, o.DeliveredAt, orderID); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order transition: %w", err)
	}
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) CompleteOrder(ctx context.Context, orderID int) (*Order, error) {
	return s.transition(ctx, orderID, func(o *Order) error { return o.Complete(time.Now()) })
}

func (s *orderService) CancelOrder(ctx context.Context, orderID int) (*Order, error) {
	return s.transition(ctx, orderID, func(o *Order) error { return o.Cancel() })
}

func (s *orderService) RecordOrderPayment(ctx context.Context, orderID int, amount decimal.Decimal, method PaymentMethod, bank, notes string) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	payment, err := o.RecordPayment(amount, method, bank, notes, time.Now())
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO order_payments (order_id, amount, method, bank, notes, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, orderID, payment.Amount, payment.Method, payment.Bank, payment.Notes, payment.PaidAt); err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE orders SET balance = $1 WHERE id = $2", o.Balance, orderID,
	); err != nil {
		return nil, fmt.Errorf("failed to update order balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return s.GetOrder(ctx, orderID)
}

// lockOrder fetches an order header FOR UPDATE within tx.
func lockOrder(ctx context.Context, tx pgx.Tx, orderID int) (*Order, error) {
	o, err := scanOrder(tx.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to lock order %d: %w", orderID, err)
	}
	return o, nil
}

func fetchOrderPayments(ctx context.Context, db pgxRowQuerier, orderID int) ([]Payment, error) {
	rows, err := db.Query(ctx, `
		SELECT id, amount, method, bank, notes, paid_at
		FROM order_payments
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.Amount, &p.Method, &p.Bank, &p.Notes, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}
