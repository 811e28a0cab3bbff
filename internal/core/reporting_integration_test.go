package core_test

import (
	"testing"
	"time"

	"publimar/internal/core"

	"github.com/shopspring/decimal"
)

func TestReporting_OutstandingOrders(t *testing.T) {
	pool, orderSvc, _, catalog, numbering, f, ctx := setupOrderTestDB(t)
	defer pool.Close()
	reporting := core.NewReportingService(pool)

	// Order 1: sticker, fully paid via down payment. Total 18.15.
	_, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID:    f.clientID,
		DownPayment: decimal.RequireFromString("18.15"),
		Items:       []core.QuoteItemInput{{ProductID: f.stickerID, Quantity: 1}},
	}, numbering, catalog)
	if err != nil {
		t.Fatalf("CreateOrder 1 failed: %v", err)
	}

	// Order 2: banner, unpaid. Total 121.
	unpaid, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: f.clientID,
		Items:    []core.QuoteItemInput{{ProductID: f.bannerID, VariantID: &f.banner1x1ID, Quantity: 1}},
	}, numbering, catalog)
	if err != nil {
		t.Fatalf("CreateOrder 2 failed: %v", err)
	}

	// Order 3: cancelled with an open balance; must not show up.
	cancelled, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: f.clientID,
		Items:    []core.QuoteItemInput{{ProductID: f.stickerID, Quantity: 2}},
	}, numbering, catalog)
	if err != nil {
		t.Fatalf("CreateOrder 3 failed: %v", err)
	}
	if _, err := orderSvc.CancelOrder(ctx, cancelled.ID); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	outstanding, err := reporting.GetOutstandingOrders(ctx)
	if err != nil {
		t.Fatalf("GetOutstandingOrders failed: %v", err)
	}
	if len(outstanding) != 1 {
		t.Fatalf("Expected 1 outstanding order, got %d", len(outstanding))
	}
	if outstanding[0].OrderID != unpaid.ID {
		t.Errorf("Expected order %d, got %d", unpaid.ID, outstanding[0].OrderID)
	}
	if !outstanding[0].Balance.Equal(decimal.NewFromInt(121)) {
		t.Errorf("Expected balance 121, got %s", outstanding[0].Balance)
	}
}

func TestReporting_ExpiredQuotes(t *testing.T) {
	pool, _, quoteSvc, _, numbering, f, ctx := setupOrderTestDB(t)
	defer pool.Close()
	reporting := core.NewReportingService(pool)

	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// Expired and still open: shows up.
	expired, err := quoteSvc.CreateQuote(ctx, core.CreateQuoteInput{
		ClientID:   f.clientID,
		ValidUntil: asOf.AddDate(0, 0, -10),
		Items:      []core.QuoteItemInput{{ProductID: f.stickerID, Quantity: 1}},
	}, numbering)
	if err != nil {
		t.Fatalf("CreateQuote expired failed: %v", err)
	}

	// Still valid: does not show up.
	_, err = quoteSvc.CreateQuote(ctx, core.CreateQuoteInput{
		ClientID:   f.clientID,
		ValidUntil: asOf.AddDate(0, 0, 10),
		Items:      []core.QuoteItemInput{{ProductID: f.stickerID, Quantity: 1}},
	}, numbering)
	if err != nil {
		t.Fatalf("CreateQuote valid failed: %v", err)
	}

	// Expired but already answered: does not show up.
	answered, err := quoteSvc.CreateQuote(ctx, core.CreateQuoteInput{
		ClientID:   f.clientID,
		ValidUntil: asOf.AddDate(0, 0, -5),
		Items:      []core.QuoteItemInput{{ProductID: f.stickerID, Quantity: 1}},
	}, numbering)
	if err != nil {
		t.Fatalf("CreateQuote answered failed: %v", err)
	}
	if _, err := quoteSvc.ClientConfirmQuote(ctx, answered.ID, ""); err != nil {
		t.Fatalf("ClientConfirmQuote failed: %v", err)
	}

	report, err := reporting.GetExpiredQuotes(ctx, asOf)
	if err != nil {
		t.Fatalf("GetExpiredQuotes failed: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("Expected 1 expired quote, got %d", len(report))
	}
	if report[0].QuoteID != expired.ID {
		t.Errorf("Expected quote %d, got %d", expired.ID, report[0].QuoteID)
	}
}

func TestReporting_SalesSummary(t *testing.T) {
	pool, orderSvc, _, catalog, numbering, f, ctx := setupOrderTestDB(t)
	defer pool.Close()
	reporting := core.NewReportingService(pool)
	year := time.Now().Year()

	// Completed order: total 121, down payment 21, one payment of 100.
	o1, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID:    f.clientID,
		DownPayment: decimal.NewFromInt(21),
		Items:       []core.QuoteItemInput{{ProductID: f.bannerID, VariantID: &f.banner1x1ID, Quantity: 1}},
	}, numbering, catalog)
	if err != nil {
		t.Fatalf("CreateOrder 1 failed: %v", err)
	}
	if _, err := orderSvc.RecordOrderPayment(ctx, o1.ID, decimal.NewFromInt(100), core.PaymentCash, "", ""); err != nil {
		t.Fatalf("RecordOrderPayment failed: %v", err)
	}
	if _, err := orderSvc.CompleteOrder(ctx, o1.ID); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}

	// Cancelled order: excluded from money aggregates, counted in cancelled_count.
	o2, err := orderSvc.CreateOrder(ctx, core.CreateOrderInput{
		ClientID: f.clientID,
		Items:    []core.QuoteItemInput{{ProductID: f.stickerID, Quantity: 1}},
	}, numbering, catalog)
	if err != nil {
		t.Fatalf("CreateOrder 2 failed: %v", err)
	}
	if _, err := orderSvc.CancelOrder(ctx, o2.ID); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	summary, err := reporting.GetSalesSummary(ctx, year)
	if err != nil {
		t.Fatalf("GetSalesSummary failed: %v", err)
	}
	if summary.OrderCount != 2 || summary.CompletedCount != 1 || summary.CancelledCount != 1 {
		t.Errorf("Expected counts 2/1/1, got %d/%d/%d", summary.OrderCount, summary.CompletedCount, summary.CancelledCount)
	}
	if !summary.TotalInvoiced.Equal(decimal.NewFromInt(121)) {
		t.Errorf("Expected invoiced 121, got %s", summary.TotalInvoiced)
	}
	if !summary.TotalCollected.Equal(decimal.NewFromInt(121)) {
		t.Errorf("Expected collected 121 (21 down + 100 payment), got %s", summary.TotalCollected)
	}
	if !summary.TotalOutstanding.IsZero() {
		t.Errorf("Expected outstanding 0, got %s", summary.TotalOutstanding)
	}

	// An empty year aggregates to zeros.
	empty, err := reporting.GetSalesSummary(ctx, year-1)
	if err != nil {
		t.Fatalf("GetSalesSummary empty year failed: %v", err)
	}
	if empty.OrderCount != 0 || !empty.TotalInvoiced.IsZero() {
		t.Errorf("Expected empty summary, got %+v", empty)
	}
}
