package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OutstandingOrder is one row of the receivables report: an order that still
// carries an unpaid balance.
type OutstandingOrder struct {
	OrderID    int             `json:"order_id"`
	Number     string          `json:"number"`
	ClientName string          `json:"client_name"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Balance    decimal.Decimal `json:"balance"`
}

// ExpiredQuote is one row of the expiry report: a quote whose validity window
// has passed without a final answer. Expiry is advisory and never blocks a
// transition.
type ExpiredQuote struct {
	QuoteID    int         `json:"quote_id"`
	Number     string      `json:"number"`
	ClientName string      `json:"client_name"`
	Status     QuoteStatus `json:"status"`
	ValidUntil time.Time   `json:"valid_until"`
}

// SalesSummary aggregates order volume and collections for one calendar year.
type SalesSummary struct {
	Year             int             `json:"year"`
	OrderCount       int             `json:"order_count"`
	CompletedCount   int             `json:"completed_count"`
	CancelledCount   int             `json:"cancelled_count"`
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// ReportingService serves read-only aggregates for dashboards. It never
// mutates state.
type ReportingService interface {
	GetOutstandingOrders(ctx context.Context) ([]OutstandingOrder, error)
	GetExpiredQuotes(ctx context.Context, asOf time.Time) ([]ExpiredQuote, error)
	GetSalesSummary(ctx context.Context, year int) (*SalesSummary, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) GetOutstandingOrders(ctx context.Context) ([]OutstandingOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, number, client_name, status, total, balance
		FROM orders
		WHERE balance > 0 AND status <> 'CANCELLED'
		ORDER BY balance DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding orders: %w", err)
	}
	defer rows.Close()

	var out []OutstandingOrder
	for rows.Next() {
		var o OutstandingOrder
		if err := rows.Scan(&o.OrderID, &o.Number, &o.ClientName, &o.Status, &o.Total, &o.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan outstanding order: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *reportingService) GetExpiredQuotes(ctx context.Context, asOf time.Time) ([]ExpiredQuote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, number, client_name, status, valid_until
		FROM quotes
		WHERE valid_until IS NOT NULL
		  AND valid_until < $1
		  AND status IN ('DRAFT', 'SENT')
		ORDER BY valid_until
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired quotes: %w", err)
	}
	defer rows.Close()

	var out []ExpiredQuote
	for rows.Next() {
		var q ExpiredQuote
		if err := rows.Scan(&q.QuoteID, &q.Number, &q.ClientName, &q.Status, &q.ValidUntil); err != nil {
			return nil, fmt.Errorf("failed to scan expired quote: %w", err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *reportingService) GetSalesSummary(ctx context.Context, year int) (*SalesSummary, error) {
	summary := SalesSummary{Year: year}

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		       COUNT(*) FILTER (WHERE status = 'CANCELLED'),
		       COALESCE(SUM(total) FILTER (WHERE status <> 'CANCELLED'), 0),
		       COALESCE(SUM(balance) FILTER (WHERE status <> 'CANCELLED'), 0)
		FROM orders
		WHERE EXTRACT(YEAR FROM created_at) = $1
	`, year).Scan(
		&summary.OrderCount, &summary.CompletedCount, &summary.CancelledCount,
		&summary.TotalInvoiced, &summary.TotalOutstanding,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales summary: %w", err)
	}

	// Collected = down payments plus recorded payments on non-cancelled orders.
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(o.down_payment), 0) +
		       COALESCE((SELECT SUM(p.amount)
		                 FROM order_payments p
		                 JOIN orders po ON po.id = p.order_id
		                 WHERE po.status <> 'CANCELLED'
		                   AND EXTRACT(YEAR FROM po.created_at) = $1), 0)
		FROM orders o
		WHERE o.status <> 'CANCELLED'
		  AND EXTRACT(YEAR FROM o.created_at) = $1
	`, year).Scan(&summary.TotalCollected)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate collections: %w", err)
	}

	return &summary, nil
}
